package main

import (
	"fmt"
	"os"

	"github.com/kevin-chtw/tw_replay/config"
	"github.com/kevin-chtw/tw_replay/fetcher"
	"github.com/kevin-chtw/tw_replay/storage"
	"github.com/kevin-chtw/tw_replay/utils"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "fetcher",
	Short: "fetcher 平台牌谱抓取",
	Long:  `fetcher 抓取历史页、场次与牌谱并写入存储`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := logrus.InfoLevel
		if verbose {
			level = logrus.DebugLevel
		}
		utils.InitLogger(level, verbose)
		return config.Load(configFile)
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <window>",
	Short: "抓取历史对局列表",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		startDate, _ := cmd.Flags().GetString("start")
		endDate, _ := cmd.Flags().GetString("end")
		maxPages, _ := cmd.Flags().GetInt("max-pages")

		dateRange, err := fetcher.ParseDateRange(startDate, endDate)
		if err != nil {
			return err
		}

		store, err := storage.Open(config.Get().Storage)
		if err != nil {
			return err
		}
		defer store.Close()

		key, err := fetcher.NewHistoryFetcher(config.Get(), store).FetchAll(args[0], dateRange, maxPages)
		if err != nil {
			return err
		}
		fmt.Println("history saved to:", key)
		return nil
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions <history-key>",
	Short: "按历史列表抓取场次与牌谱ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.Open(config.Get().Storage)
		if err != nil {
			return err
		}
		defer store.Close()

		return fetcher.NewSessionFetcher(config.Get(), store).FetchSessions(args[0])
	},
}

var recordsCmd = &cobra.Command{
	Use:   "records [record-id...]",
	Short: "抓取牌谱正文；不带参数时抓 sessions/all_record 全量",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := storage.Open(config.Get().Storage)
		if err != nil {
			return err
		}
		defer store.Close()

		ids := args
		if len(ids) == 0 {
			if err := store.LoadJSON(storage.KeyAllRecord, &ids); err != nil {
				return fmt.Errorf("load %s: %w", storage.KeyAllRecord, err)
			}
		}

		fetched := fetcher.NewRecordFetcher(config.Get(), store).FetchRecords(ids)
		fmt.Printf("fetched %d/%d records\n", fetched, len(ids))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "fetcher.yml", "config yml file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging to stderr")

	historyCmd.Flags().String("start", "", "start date YYYYMMDD")
	historyCmd.Flags().String("end", "", "end date YYYYMMDD")
	historyCmd.Flags().Int("max-pages", 0, "page limit (0 = until window end)")

	rootCmd.AddCommand(historyCmd, sessionsCmd, recordsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
