package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kevin-chtw/tw_replay/gbfan"
	"github.com/kevin-chtw/tw_replay/replay"
	"github.com/kevin-chtw/tw_replay/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	recordFile string
	recordDir  string
	outputFile string
	showSteps  bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "analyzer",
	Short: "analyzer 牌谱回放与和牌分析",
	Long:  `analyzer 回放平台牌谱，重建逐步局面并独立算番`,
	RunE: func(cmd *cobra.Command, args []string) error {
		level := logrus.InfoLevel
		if verbose {
			level = logrus.DebugLevel
		}
		utils.InitLogger(level, verbose)

		if recordFile == "" && recordDir == "" {
			return fmt.Errorf("either --record or --dir is required")
		}

		sim := replay.NewSimulator(gbfan.NewScorer())

		if recordFile != "" {
			return analyzeOne(sim, recordFile)
		}
		return analyzeDir(sim, recordDir)
	},
}

func init() {
	rootCmd.Flags().StringVar(&recordFile, "record", "", "single record json file")
	rootCmd.Flags().StringVar(&recordDir, "dir", "", "record directory")
	rootCmd.Flags().StringVar(&outputFile, "output", "", "write game log json to file")
	rootCmd.Flags().BoolVar(&showSteps, "steps", false, "print the step log")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging to stderr")
}

func analyzeOne(sim *replay.Simulator, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	result, err := sim.Simulate(raw)
	if err != nil {
		return fmt.Errorf("simulate %s: %w", path, err)
	}
	fmt.Println(result.SummaryLine())

	if showSteps {
		for _, step := range result.GameLog.StepLogs {
			fmt.Printf("[%3d] %s家 %s (+%.1fs) %s\n",
				step.StepNumber, step.PlayerWind, step.PlayerName,
				float64(step.ElapsedMs)/1000.0, step.Description)
			fmt.Printf("      手牌: %v | 副露: %v | 弃牌: %v\n",
				step.HandTiles, step.PackTiles, step.DiscardTiles)
		}
	}

	if wa := result.WinAnalysis; wa != nil && wa.WinnerIdx >= 0 {
		fmt.Printf("  环境串: %s\n", wa.EnvFlag)
		fmt.Printf("  声明番: %d (基础 %d)  计算番: %d  花牌: %d\n",
			wa.TotalFan, wa.BaseFan, wa.CalculatedFan, wa.FlowerCount)
		for _, d := range wa.FanDetails {
			fmt.Printf("    声明 %s %d番 x%d\n", d.Name, d.Points, d.Count)
		}
		for _, d := range wa.GBFanDetails {
			fmt.Printf("    计算 %s %d番 x%d\n", d.Name, d.Points, d.Count)
		}
	}

	if outputFile != "" {
		data, err := json.MarshalIndent(result.GameLog, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(outputFile, data, 0o644)
	}
	return nil
}

func analyzeDir(sim *replay.Simulator, dir string) error {
	entries, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return err
	}

	success, failed := 0, 0
	for _, path := range entries {
		if err := analyzeOne(sim, path); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		success++
	}
	fmt.Printf("analyzed %d records, %d failed\n", success, failed)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
