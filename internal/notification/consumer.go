package notification

import (
	"context"
	"log"

	"github.com/arvindh25/college-event-backend/config"
	"github.com/arvindh25/college-event-backend/utils"
)

// StartKafkaConsumer runs the attendance-topic consumer loop in a
// goroutine. Messages that fail to decode are logged and skipped; the
// loop exits when ctx is cancelled.
func StartKafkaConsumer(ctx context.Context, svc Service, cfg *config.Config) {
	reader := utils.NewAttendanceReader(cfg, "notification-service")

	go func() {
		defer reader.Close()
		log.Println("🟢 Notification consumer started, topic:", cfg.KafkaAttendanceTopic)
		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					log.Println("🔴 Notification consumer stopped")
					return
				}
				log.Println("❌ Kafka read error:", err)
				continue
			}
			if err := svc.HandleAttendanceMarked(ctx, msg.Value); err != nil {
				log.Println("❌ Handling attendance message failed:", err)
			}
		}
	}()
}
