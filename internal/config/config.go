package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/rocketscienceinc/trio-backend/internal/apperror"
	"github.com/rocketscienceinc/trio-backend/internal/engine"
	"github.com/rocketscienceinc/trio-backend/internal/entity"
)

type Config struct {
	LogLevel string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort string  `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Redis    Redis   `yaml:"redis"`
	Game     Game    `yaml:"game"`
	Results  Results `yaml:"results"`
}

type Redis struct {
	Host string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port string `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
}

type Game struct {
	BoardSize        int           `yaml:"board-size" env:"GAME_BOARD_SIZE" env-default:"7"`
	RobotDelay       time.Duration `yaml:"robot-delay" env:"GAME_ROBOT_DELAY" env-default:"800ms"`
	ManualRobotDelay time.Duration `yaml:"manual-robot-delay" env:"GAME_MANUAL_ROBOT_DELAY" env-default:"300ms"`
	PlayerO          string        `yaml:"player-o" env:"GAME_PLAYER_O" env-default:"human"`
	PlayerX          string        `yaml:"player-x" env:"GAME_PLAYER_X" env-default:"human"`
}

type Results struct {
	Limit int64 `yaml:"limit" env:"RESULTS_LIMIT" env-default:"100"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

// Load - reads the yaml file at path, environment variables override it.
func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if err := config.Game.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// Validate - board size in range, known controllers, non-negative delays.
func (that *Game) Validate() error {
	if that.BoardSize < engine.MinBoardSize || that.BoardSize > engine.MaxBoardSize {
		return fmt.Errorf("%w: board-size %d outside %d..%d", apperror.ErrInvalidConfiguration, that.BoardSize, engine.MinBoardSize, engine.MaxBoardSize)
	}

	if that.RobotDelay < 0 || that.ManualRobotDelay < 0 {
		return fmt.Errorf("%w: negative robot delay", apperror.ErrInvalidConfiguration)
	}

	if _, err := that.PlayerControl(); err != nil {
		return err
	}

	return nil
}

func (that *Game) PlayerControl() (entity.PlayerControl, error) {
	o, err := entity.ParseController(that.PlayerO)
	if err != nil {
		return entity.PlayerControl{}, fmt.Errorf("%w: player-o: %w", apperror.ErrInvalidConfiguration, err)
	}

	x, err := entity.ParseController(that.PlayerX)
	if err != nil {
		return entity.PlayerControl{}, fmt.Errorf("%w: player-x: %w", apperror.ErrInvalidConfiguration, err)
	}

	return entity.PlayerControl{O: o, X: x}, nil
}
