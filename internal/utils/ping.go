package utils

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
)

// PingService checks if a service is reachable at the given URL
func PingService(serviceURL string, timeout time.Duration) error {
	parsedURL, err := url.Parse(serviceURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	host := parsedURL.Hostname()
	port := parsedURL.Port()

	// Default ports if not specified
	if port == "" {
		switch parsedURL.Scheme {
		case "https":
			port = "443"
		default:
			port = "80"
		}
	}

	address := net.JoinHostPort(host, port)

	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	defer conn.Close()

	return nil
}

// CheckWebPage fetches pageURL and expects a 200 answer within timeout.
// A deadline on ctx shortens the timeout.
func CheckWebPage(ctx context.Context, pageURL string, timeout time.Duration) error {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return fmt.Errorf("no time left to reach %s", pageURL)
	}

	agent := fiber.Get(pageURL)
	agent.Timeout(timeout)
	agent.MaxRedirectsCount(3)
	if err := agent.Parse(); err != nil {
		return fmt.Errorf("invalid web page %s: %w", pageURL, err)
	}

	code, _, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("failed to reach %s: %w", pageURL, errs[0])
	}
	if code != fiber.StatusOK {
		return fmt.Errorf("%s answered with status %d", pageURL, code)
	}

	return nil
}
