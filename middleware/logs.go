package middleware

import (
	"encoding/json"
	"log"
	"os"
	"time"

	"Bhumi/Models"

	"github.com/gofiber/fiber/v2"
)

// LogData contains the information written for each request
type LogData struct {
	Timestamp time.Time     `json:"timestamp"`
	Method    string        `json:"method"`
	Path      string        `json:"path"`
	Status    int           `json:"status"`
	Latency   time.Duration `json:"latency"`
	IP        string        `json:"ip"`
	UserID    interface{}   `json:"user_id"`
	Username  string        `json:"username"`
	Error     string        `json:"error,omitempty"`
}

// RequestLogger writes one JSON line per request to logs/requests.log and
// echoes method/path to the console.
func RequestLogger() fiber.Handler {
	if err := os.MkdirAll("logs", 0755); err != nil {
		log.Printf("Error creating logs directory: %v\n", err)
	}

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		data := LogData{
			Timestamp: start,
			Method:    c.Method(),
			Path:      c.Path(),
			Status:    c.Response().StatusCode(),
			Latency:   time.Since(start),
			IP:        c.IP(),
		}
		if err != nil {
			data.Error = err.Error()
		}
		if user, ok := c.Locals("user").(Models.User); ok {
			data.UserID = user.ID
			data.Username = user.Username
		}

		log.Println(data.Method, data.Path, data.Status)

		file, fileErr := os.OpenFile("logs/requests.log",
			os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if fileErr != nil {
			log.Printf("Error opening request log file: %v\n", fileErr)
			return err
		}
		defer file.Close()

		if line, jsonErr := json.Marshal(data); jsonErr == nil {
			file.Write(append(line, '\n'))
		}
		return err
	}
}
