// Command selfplay plays robot-vs-robot games and reports the results.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rocketscienceinc/trio-backend/internal/engine"
	"github.com/rocketscienceinc/trio-backend/internal/entity"
)

const gameTimeout = 30 * time.Second

type tally struct {
	games  int
	winsO  int
	winsX  int
	ties   int
	points entity.Score
}

func (that *tally) add(result entity.Result) {
	that.games++
	that.points.Add(entity.PlayerO, result.Score.O)
	that.points.Add(entity.PlayerX, result.Score.X)

	switch {
	case result.Tie:
		that.ties++
	case result.Winner == entity.PlayerO:
		that.winsO++
	default:
		that.winsX++
	}
}

func (that *tally) average(points int) float64 {
	if that.games == 0 {
		return 0
	}

	return float64(points) / float64(that.games)
}

// gameOver signals the end of a game.
type gameOver struct {
	engine.NopObserver

	done chan entity.Result
}

func (that gameOver) GameOver(result entity.Result) {
	that.done <- result
}

func main() {
	games := flag.Int("games", 100, "number of games to play")
	size := flag.Int("size", engine.DefaultBoardSize, "board size")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "seed of the first game, game i uses seed+i")
	verbose := flag.Bool("verbose", false, "log every move")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	engineLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		engineLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	if err := run(engineLogger, *games, *size, *seed); err != nil {
		log.Error().Err(err).Msg("selfplay failed")
		os.Exit(1)
	}
}

func run(logger *slog.Logger, games, size int, seed uint64) error {
	log.Info().Int("games", games).Int("size", size).Uint64("seed", seed).Msg("selfplay started")

	total := tally{}
	start := time.Now()

	for i := range games {
		gameSeed := seed + uint64(i)

		result, err := playGame(logger, size, gameSeed)
		if err != nil {
			return fmt.Errorf("game %d: %w", i+1, err)
		}

		total.add(result)
		log.Debug().
			Int("game", i+1).
			Uint64("seed", gameSeed).
			Str("winner", result.Winner.String()).
			Bool("tie", result.Tie).
			Int("o", result.Score.O).
			Int("x", result.Score.X).
			Msg(result.Announcement())
	}

	log.Info().
		Int("games", total.games).
		Int("o_wins", total.winsO).
		Int("x_wins", total.winsX).
		Int("ties", total.ties).
		Float64("o_avg", total.average(total.points.O)).
		Float64("x_avg", total.average(total.points.X)).
		Dur("elapsed", time.Since(start)).
		Msg("selfplay finished")

	return nil
}

func playGame(logger *slog.Logger, size int, seed uint64) (entity.Result, error) {
	done := make(chan entity.Result, 1)

	e := engine.New(logger,
		engine.WithSeed(seed),
		engine.WithRobotDelay(0),
		engine.WithObserver(gameOver{done: done}),
	)
	defer e.Close()

	if err := e.Configure(size, entity.PlayerControl{O: entity.Robot, X: entity.Robot}); err != nil {
		return entity.Result{}, err
	}

	if err := e.Start(); err != nil {
		return entity.Result{}, err
	}

	select {
	case result := <-done:
		return result, nil
	case <-time.After(gameTimeout):
		return entity.Result{}, fmt.Errorf("no result after %s", gameTimeout)
	}
}
