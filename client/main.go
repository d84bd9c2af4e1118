package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/wfunc/tetris/config"
	"github.com/wfunc/tetris/controller"
	"github.com/wfunc/tetris/game"
	"github.com/wfunc/tetris/logger"
	"github.com/wfunc/tetris/network"
)

// Headless demo client: connects to a relay server and drives the engine
// from stdin commands. A real frontend replaces the stdin loop with its
// input adapter and a renderer over ctrl.Snapshot()/ctrl.OpponentState().
func main() {
	logger.Init()
	defer logger.Sync()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	client := network.NewGameClient()
	if err := client.Connect(cfg.Client.Host, cfg.Client.Port, cfg.Client.PlayerName); err != nil {
		logger.Log.Fatalf("Connection failed: %v", err)
	}
	defer client.Disconnect()

	ctrl := controller.NewController(game.NewEngine(), client)
	ctrl.Start()
	defer ctrl.Stop()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	go func() {
		<-interrupt
		fmt.Println("\nInterrupt received, closing connection.")
		ctrl.Stop()
		client.Disconnect()
		os.Exit(0)
	}()

	fmt.Println("Commands: left right down cw ccw drop hold pause reset state opponent quit")

	reader := bufio.NewReader(os.Stdin)
	for {
		text, err := reader.ReadString('\n')
		if err != nil {
			return
		}

		switch strings.TrimSpace(text) {
		case "left":
			fmt.Println("ok:", ctrl.MoveLeft())
		case "right":
			fmt.Println("ok:", ctrl.MoveRight())
		case "down":
			fmt.Println("ok:", ctrl.MoveDown())
		case "cw":
			fmt.Println("ok:", ctrl.RotateClockwise())
		case "ccw":
			fmt.Println("ok:", ctrl.RotateCounterClockwise())
		case "drop":
			fmt.Println("dropped:", ctrl.HardDrop())
		case "hold":
			fmt.Println("ok:", ctrl.Hold())
		case "pause":
			ctrl.TogglePause()
			fmt.Println("pause toggled")
		case "reset":
			ctrl.Reset()
			fmt.Println("new game")
		case "state":
			s := ctrl.Snapshot()
			fmt.Printf("score=%d lines=%d level=%d over=%v\n", s.Score, s.LinesCleared, s.Level, s.GameOver)
		case "opponent":
			id, s := ctrl.OpponentState()
			if s == nil {
				fmt.Println("no opponent state yet")
			} else {
				fmt.Printf("%s: score=%d lines=%d level=%d over=%v\n", id, s.Score, s.LinesCleared, s.Level, s.GameOver)
			}
		case "quit":
			return
		case "":
		default:
			fmt.Println("unknown command")
		}
	}
}
