package notifications

import (
	"bytes"
	"fmt"
	"net/http"
	"time"
)

// SendWebhook posts a JSON payload to the notification sink. The 5s timeout
// keeps a slow sink from holding a worker slot.
func SendWebhook(url string, event string, payload []byte) error {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "ZollTax-Notify/1.0")
	req.Header.Set("X-Event", event)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("notification sink returned %d", resp.StatusCode)
}
