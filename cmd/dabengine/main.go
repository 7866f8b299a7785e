// dabengine - command line analysis tool for the dots-and-boxes engine
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/yourusername/dabengine/internal/grid"
	"github.com/yourusername/dabengine/pkg/engine"
)

func main() {
	// The CLI is for humans; keep structured logging out of the way.
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "choose":
		cmdChoose(args)
	case "classify":
		cmdClassify(args)
	case "info":
		cmdInfo(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`dabengine - Dots-and-Boxes Decision Engine

Usage: dabengine <command> [options]

Commands:
  choose    Choose a move for a board
  classify  Partition a board's legal moves into tactical tiers
  info      Show statistics for a persisted Q-table

Use "dabengine <command> -h" for command-specific help.

Board Format:
  Boards are JSON objects with "lines" (edge key -> true) and "squares"
  (box key -> owner). Edge keys look like "0,0-0,1"; box keys like "0,0".
  Read from -board FILE, or from stdin when -board is "-".`)
}

// readBoard loads a board from a file or stdin.
func readBoard(path string) (*grid.Board, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	board := grid.NewBoard(grid.DefaultSize)
	if err := json.Unmarshal(data, board); err != nil {
		return nil, fmt.Errorf("invalid board: %w", err)
	}
	return board, nil
}

func cmdChoose(args []string) {
	fs := flag.NewFlagSet("choose", flag.ExitOnError)
	boardPath := fs.String("board", "-", "Board JSON file (- for stdin)")
	tablePath := fs.String("qtable", "", "Q-table to consult (optional)")
	epsilon := fs.Float64("epsilon", 0, "Exploration rate (0 = pure exploitation)")
	seed := fs.Uint64("seed", 0, "Random seed")
	player := fs.String("player", "ai-player", "Agent player ID")
	fs.Parse(args)

	board, err := readBoard(*boardPath)
	if err != nil {
		fatalf("%v", err)
	}

	exploration := *epsilon
	if exploration == 0 {
		exploration = -1 // explicit zero: pure exploitation
	}
	eng := engine.NewEngine(engine.Options{
		TablePath:    *tablePath,
		Exploration:  exploration,
		SaveSampling: -1, // Never persist from a one-shot CLI run
		Seed:         *seed,
	})

	move := eng.ChooseMove(board, *player)
	if move == nil {
		fmt.Println("No legal moves remain.")
		return
	}

	fmt.Printf("Move: %s\n", move.Key())
	tiers := engine.Classify(board)
	for _, e := range tiers.Completing {
		if e == *move {
			fmt.Println("Tier: completing")
			return
		}
	}
	for _, e := range tiers.Unsafe {
		if e == *move {
			fmt.Printf("Tier: unsafe (risk %d)\n", engine.Risk(board, e))
			return
		}
	}
	for _, e := range tiers.Strategic {
		if e == *move {
			fmt.Println("Tier: strategic")
			return
		}
	}
	fmt.Println("Tier: safe")
}

func cmdClassify(args []string) {
	fs := flag.NewFlagSet("classify", flag.ExitOnError)
	boardPath := fs.String("board", "-", "Board JSON file (- for stdin)")
	fs.Parse(args)

	board, err := readBoard(*boardPath)
	if err != nil {
		fatalf("%v", err)
	}

	tiers := engine.Classify(board)
	fmt.Printf("Legal moves: %d (progress %.0f%%)\n\n", len(tiers.All), board.Progress()*100)

	printTier("Completing", tiers.Completing)
	printTier("Strategic", tiers.Strategic)
	printTier("Safe", tiers.Safe)
	if len(tiers.Unsafe) > 0 {
		fmt.Printf("Unsafe (%d):\n", len(tiers.Unsafe))
		for _, e := range tiers.Unsafe {
			fmt.Printf("  %s  risk=%d\n", e.Key(), engine.Risk(board, e))
		}
	}
}

func printTier(name string, moves []grid.Edge) {
	if len(moves) == 0 {
		return
	}
	fmt.Printf("%s (%d):\n", name, len(moves))
	for _, e := range moves {
		fmt.Printf("  %s\n", e.Key())
	}
}

func cmdInfo(args []string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	tablePath := fs.String("qtable", "q_table.json", "Path to the persisted Q-table")
	fs.Parse(args)

	table := engine.LoadQTable(*tablePath)
	stats := table.Stats()

	fmt.Printf("States:  %d\n", table.Len())
	fmt.Printf("Entries: %d\n", stats.Count)
	if stats.Count > 0 {
		fmt.Printf("Mean:    %.4f\n", stats.Mean)
		fmt.Printf("StdDev:  %.4f\n", stats.StdDev)
		fmt.Printf("Median:  %.4f\n", stats.Median)
		fmt.Printf("Min:     %.4f\n", stats.Min)
		fmt.Printf("Max:     %.4f\n", stats.Max)
	}
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
