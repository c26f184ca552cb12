package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"senate-lobbyist-source/internal/source"
)

var errLimitReached = errors.New("record limit reached")

type recordMessage struct {
	Type   string     `json:"type"`
	Record recordData `json:"record"`
}

type recordData struct {
	Stream    string        `json:"stream"`
	Data      source.Record `json:"data"`
	EmittedAt int64         `json:"emitted_at"`
}

var (
	readStream string
	readLimit  int
)

var readCmd = &cobra.Command{
	Use:   "read [--stream lobbyists] [--limit N]",
	Short: "Reads records and writes them to stdout, one JSON message per line.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		src, err := source.New(&cfg.Source)
		if err != nil {
			return err
		}

		streams := src.Streams()
		if readStream != "" {
			stream, ok := src.Stream(readStream)
			if !ok {
				return fmt.Errorf("unknown stream %q", readStream)
			}
			streams = []source.Stream{stream}
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		emitted := 0
		for _, stream := range streams {
			stats, err := src.Read(cmd.Context(), stream, func(r source.Record) error {
				if readLimit > 0 && emitted >= readLimit {
					return errLimitReached
				}
				emitted++
				return enc.Encode(recordMessage{
					Type: "RECORD",
					Record: recordData{
						Stream:    stream.Name(),
						Data:      r,
						EmittedAt: time.Now().UnixMilli(),
					},
				})
			})
			if errors.Is(err, errLimitReached) {
				log.Printf("%s: stopped after %d records", stream.Name(), readLimit)
				return nil
			}
			if err != nil {
				return err
			}
			log.Printf("%s: read %d records from %d pages", stream.Name(), stats.Records, stats.Pages)
		}
		return nil
	},
}

func init() {
	readCmd.Flags().StringVar(&readStream, "stream", "", "Only read this stream.")
	readCmd.Flags().IntVar(&readLimit, "limit", 0, "Stop after this many records (0 reads everything).")
	rootCmd.AddCommand(readCmd)
}
