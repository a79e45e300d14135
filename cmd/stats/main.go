package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kevin-chtw/tw_replay/config"
	"github.com/kevin-chtw/tw_replay/gbfan"
	"github.com/kevin-chtw/tw_replay/replay"
	"github.com/kevin-chtw/tw_replay/stats"
	"github.com/kevin-chtw/tw_replay/storage"
	"github.com/kevin-chtw/tw_replay/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/topfreegames/pitaya/v3/pkg/logger"
)

var (
	configFile  string
	recordDir   string
	limit       int
	listEvents  bool
	playerStats bool
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "stats",
	Short: "stats 截和与玩家统计",
	Long:  `stats 回放牌谱目录，统计截和率与玩家累计数据`,
	RunE: func(cmd *cobra.Command, args []string) error {
		level := logrus.InfoLevel
		if verbose {
			level = logrus.DebugLevel
		}
		utils.InitLogger(level, verbose)

		if configFile != "" {
			if err := config.Load(configFile); err != nil {
				return err
			}
		}

		if playerStats {
			return runPlayerStats()
		}
		return runInterceptStats()
	},
}

func init() {
	rootCmd.Flags().StringVar(&configFile, "config", "", "config yml file")
	rootCmd.Flags().StringVarP(&recordDir, "dir", "d", "data/record", "record directory")
	rootCmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum files to process (0 = all)")
	rootCmd.Flags().BoolVar(&listEvents, "list-events", false, "print intercept events")
	rootCmd.Flags().BoolVar(&playerStats, "player-stats", false, "run player statistics aggregation")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging to stderr")
}

func runPlayerStats() error {
	store, err := storage.Open(config.Get().Storage)
	if err != nil {
		return err
	}
	defer store.Close()

	runner := stats.NewPlayerStatsRunner(store)
	if err := runner.Run(stats.PlayerStatsOptions{RecordDir: recordDir, Limit: limit}); err != nil {
		return err
	}
	fmt.Println("player stats written to storage")
	return nil
}

func runInterceptStats() error {
	sim := replay.NewSimulator(gbfan.NewScorer())
	intercept := stats.NewInterceptStats(gbfan.NewScorer())
	sim.AddObserver(intercept.Observer)

	seen, success := 0, 0
	err := filepath.WalkDir(recordDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		if limit > 0 && seen >= limit {
			return fs.SkipAll
		}
		seen++

		raw, err := os.ReadFile(path)
		if err != nil {
			logger.Log.Errorf("read %s: %v", path, err)
			return nil
		}

		record, err := replay.ParseRecord(raw)
		if err != nil {
			logger.Log.Warnf("parse %s: %v", path, err)
			return nil
		}

		intercept.SetRoundID(filepath.Base(path))
		intercept.Reset(record)
		if _, err := sim.SimulateRecord(record); err != nil {
			logger.Log.Warnf("simulate %s: %v", path, err)
			return nil
		}
		intercept.Flush()
		success++
		return nil
	})
	if err != nil {
		return err
	}

	result := intercept.Result()
	fmt.Printf("\n=== Intercept Stats Summary ===\n")
	fmt.Printf("Files scanned: %d (success: %d)\n", seen, success)
	fmt.Printf("Ron wins: %d\n", result.TotalRonWins)
	fmt.Printf("Intercepts: %d\n", result.InterceptCount)
	fmt.Printf("Intercept rate: %.2f%%\n", result.InterceptRate*100)
	if listEvents {
		for _, e := range result.Events {
			if e.IsIntercept {
				fmt.Println(e.String())
			}
		}
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
