package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/segmentio/kafka-go"

	"github.com/smashpoint/league/internal/domain"
	"github.com/smashpoint/league/internal/infra"
)

const defaultGroupID = "league-events"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("league-events failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if !cfg.KafkaEnabled {
		return errors.New("KAFKA_ENABLED is false, nothing to consume")
	}

	groupID := defaultGroupID
	if s := os.Getenv("KAFKA_GROUP_ID"); s != "" {
		groupID = s
	}

	consumer := infra.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, groupID, cfg.KafkaEnabled, logger)
	defer consumer.Close()
	if !consumer.Enabled() {
		return errors.New("KAFKA_BROKERS is empty, nothing to consume")
	}
	logger.Info("league-events starting", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic, "group_id", groupID)

	for {
		msg, err := consumer.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("league-events shutting down")
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}
		handle(logger, msg)
	}
}

func handle(logger *slog.Logger, msg kafka.Message) {
	var evt domain.Event
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		logger.Warn("skipping undecodable message", "partition", msg.Partition, "offset", msg.Offset, "error", err)
		return
	}
	logger.Info("ledger event",
		"event_id", evt.EventID,
		"event_type", evt.EventType,
		"aggregate_type", evt.AggregateType,
		"aggregate_id", evt.AggregateID,
		"season", evt.Season,
		"revision", evt.Revision,
		"standings_changed", evt.AffectsStandings(),
		"offset", msg.Offset,
	)
}
