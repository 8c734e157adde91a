// adminwatch tails the admin order room from a terminal. It mirrors the
// server's order list into a local feed and prints a summary whenever the
// feed changes.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"mealmart/internal/models"
	"mealmart/internal/realtime"
	"mealmart/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	zl, err := logger.New(os.Getenv("LOG_LEVEL"))
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	apiURL := os.Getenv("API_URL")
	if apiURL == "" {
		apiURL = "http://localhost:8080"
	}
	wsURL := os.Getenv("WS_URL")
	if wsURL == "" {
		wsURL = "ws://localhost:8080/ws"
	}
	token := os.Getenv("ADMIN_TOKEN")
	if token == "" {
		zl.Fatal("ADMIN_TOKEN environment variable is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feed := realtime.NewOrderFeed()
	watcher := realtime.NewWatcher(wsURL, token, feed, fetchOrders(apiURL, token), zl)

	go printLoop(ctx, feed)

	if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
		zl.Fatal("watcher stopped", zap.Error(err))
	}
}

// fetchOrders pulls the authoritative order list over REST for resyncs.
func fetchOrders(apiURL, token string) realtime.FetchFunc {
	client := &http.Client{Timeout: 10 * time.Second}
	return func(ctx context.Context) ([]*models.Order, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"/orders", nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetch orders: unexpected status %d", resp.StatusCode)
		}

		var orders []*models.Order
		if err := json.NewDecoder(resp.Body).Decode(&orders); err != nil {
			return nil, err
		}
		return orders, nil
	}
}

func printLoop(ctx context.Context, feed *realtime.OrderFeed) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	lastPrinted := ""
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			summary := summarize(feed.Snapshot())
			if summary != lastPrinted {
				fmt.Println(summary)
				lastPrinted = summary
			}
		}
	}
}

func summarize(orders []*models.Order) string {
	counts := make(map[models.OrderStatus]int)
	for _, o := range orders {
		counts[o.Status]++
	}
	return fmt.Sprintf("%s  orders=%d pending=%d confirmed=%d preparing=%d delivering=%d completed=%d cancelled=%d",
		time.Now().Format(time.TimeOnly), len(orders),
		counts[models.OrderPending], counts[models.OrderConfirmed], counts[models.OrderPreparing],
		counts[models.OrderDelivering], counts[models.OrderCompleted], counts[models.OrderCancelled])
}
