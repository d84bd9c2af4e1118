package rpc

import (
	"net"
	"net/rpc"
	"time"

	"github.com/wfunc/tetris/logger"
	"github.com/wfunc/tetris/models"
	"github.com/wfunc/tetris/services"
	"github.com/wfunc/tetris/session"
)

// Server manages the admin RPC listener.
type Server struct {
	listener net.Listener
	address  string
}

func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins serving RPC requests. It blocks until Stop.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// StatsService exposes relay statistics over net/rpc. Methods follow the
// net/rpc signature rules: exported, pointer reply, error return.
type StatsService struct {
	sessions  *session.Manager
	scores    *services.ScoreService
	startTime time.Time
}

func NewStatsService(sessions *session.Manager, scores *services.ScoreService) *StatsService {
	return &StatsService{
		sessions:  sessions,
		scores:    scores,
		startTime: time.Now(),
	}
}

type StatsArgs struct{}

type StatsReply struct {
	UptimeSeconds  float64
	ConnectedPeers int
	PlayerIDs      []string
}

func (ss *StatsService) Stats(args *StatsArgs, reply *StatsReply) error {
	reply.UptimeSeconds = time.Since(ss.startTime).Seconds()
	reply.ConnectedPeers = ss.sessions.Count()
	reply.PlayerIDs = ss.sessions.PlayerIDs()
	return nil
}

type TopScoresArgs struct {
	Limit int
}

type TopScoresReply struct {
	Records []models.GameRecord
}

func (ss *StatsService) TopScores(args *TopScoresArgs, reply *TopScoresReply) error {
	if ss.scores == nil {
		reply.Records = nil
		return nil
	}
	limit := args.Limit
	if limit <= 0 {
		limit = 10
	}
	records, err := ss.scores.TopScores(limit)
	if err != nil {
		return err
	}
	reply.Records = records
	return nil
}
