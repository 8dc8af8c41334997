package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/fiootv/comms-gateway/internal/config"
	"github.com/fiootv/comms-gateway/internal/db"
	"github.com/fiootv/comms-gateway/internal/dispatcher"
	"github.com/fiootv/comms-gateway/internal/kafka"
	"github.com/fiootv/comms-gateway/internal/metrics"
	"github.com/fiootv/comms-gateway/internal/model"
	"github.com/fiootv/comms-gateway/internal/repository"
	"github.com/fiootv/comms-gateway/internal/service/outbound"
	"github.com/fiootv/comms-gateway/internal/worker"
)

var senderCmd = &cobra.Command{
	Use:   "sender",
	Short: "Start sender worker (sms | whatsapp | email)",
}

var senderSMSCmd = &cobra.Command{
	Use:   "sms",
	Short: "Run sender worker for the SMS channel",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSender(cmd, model.ChannelSMS)
	},
}

var senderWhatsAppCmd = &cobra.Command{
	Use:   "whatsapp",
	Short: "Run sender worker for the WhatsApp channel",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSender(cmd, model.ChannelWhatsApp)
	},
}

var senderEmailCmd = &cobra.Command{
	Use:   "email",
	Short: "Run sender worker for the email channel",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSender(cmd, model.ChannelEmail)
	},
}

func init() {
	senderCmd.AddCommand(senderSMSCmd)
	senderCmd.AddCommand(senderWhatsAppCmd)
	senderCmd.AddCommand(senderEmailCmd)
}

func runSender(cmd *cobra.Command, channel model.Channel) error {
	// 1) load config
	cfgPath, _ := cmd.Root().PersistentFlags().GetString("config")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	metrics.MustRegister(prometheus.DefaultRegisterer)

	// 2) DB connection (MySQL)
	dbx, err := db.NewMySQLConnection(cfg.MySQL)
	if err != nil {
		return fmt.Errorf("mysql connect: %w", err)
	}
	defer dbx.Close()

	// 3) repositories (MySQL)
	conversationsRepo := repository.NewConversationsRepository(dbx)

	// 4) providers → dispatcher
	provs, err := buildProviders(cfg, channel)
	if err != nil {
		return err
	}
	disp := dispatcher.NewDispatcher(provs, cfg.Sender.MaxAttempts)

	// 5) kafka consumer
	topic := outbound.TopicFor(channel)
	groupID := cfg.Kafka.GroupID
	if groupID == "" {
		groupID = "commsgw-sender"
	}
	groupID = groupID + "-" + channel.String()

	consumer := kafka.NewConsumer(cfg.Kafka, topic, groupID)
	defer consumer.Close()

	w := worker.NewSender(dbx, consumer, conversationsRepo, disp, channel)

	// tune knobs
	if cfg.Sender.WorkerCount > 0 {
		w.Workers = cfg.Sender.WorkerCount
	}
	if cfg.Sender.BatchSize > 0 {
		w.BatchSize = cfg.Sender.BatchSize
	}
	if cfg.Sender.BatchWait > 0 {
		w.BatchWait = cfg.Sender.BatchWait
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		log.Printf("signal received: %s, stopping sender...", sig)
		cancel()
	}()

	log.Printf("starting %s sender (topic=%s group=%s workers=%d)", channel, topic, groupID, w.Workers)
	return w.Run(ctx)
}

func buildProviders(cfg config.Config, channel model.Channel) ([]dispatcher.Provider, error) {
	var provs []dispatcher.Provider

	if channel == model.ChannelEmail {
		if strings.TrimSpace(cfg.SMTP.Host) == "" {
			return nil, fmt.Errorf("smtp host not configured")
		}
		provs = append(provs, dispatcher.NewSMTPProvider(
			"smtp",
			cfg.SMTP.Host,
			cfg.SMTP.Port,
			cfg.SMTP.Username,
			cfg.SMTP.Password,
			cfg.SMTP.From,
			0, 0,
		))
		return provs, nil
	}

	for _, pc := range cfg.Providers {
		if !pc.Enabled || strings.TrimSpace(pc.BaseURL) == "" {
			continue
		}
		provs = append(provs,
			dispatcher.NewHTTPProvider(
				pc.Name,
				strings.TrimRight(pc.BaseURL, "/"),
				pc.SMSPath,
				pc.WhatsAppPath,
				pc.TimeoutMs,
				pc.Breaker.FailThreshold,
				pc.Breaker.OpenForMs,
			),
		)
	}
	if len(provs) == 0 {
		return nil, fmt.Errorf("no providers enabled in config")
	}
	return provs, nil
}
