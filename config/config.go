package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Client   ClientConfig   `mapstructure:"client"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	ListenAddress    string `mapstructure:"listen_address"`
	MetricsAddress   string `mapstructure:"metrics_address"`
	RPCAddress       string `mapstructure:"rpc_address"`
	SpectatorAddress string `mapstructure:"spectator_address"`
}

type ClientConfig struct {
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	PlayerName string `mapstructure:"player_name"`
}

type DatabaseConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	Driver   string         `mapstructure:"driver"` // "gorm" or "pq"
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.listen_address", "0.0.0.0:5555")
	viper.SetDefault("server.metrics_address", "0.0.0.0:9090")
	viper.SetDefault("server.rpc_address", "0.0.0.0:5556")
	viper.SetDefault("server.spectator_address", "0.0.0.0:8080")
	viper.SetDefault("client.host", "127.0.0.1")
	viper.SetDefault("client.port", 5555)
	viper.SetDefault("client.player_name", "Player")
	viper.SetDefault("database.enabled", false)
	viper.SetDefault("database.driver", "gorm")

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
