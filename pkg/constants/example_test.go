package constants_test

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/agentstation/mediathek/pkg/constants"
)

// Example_timeouts demonstrates timeout constants
func Example_timeouts() {
	client := &http.Client{
		Timeout: constants.DefaultHTTPTimeout,
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.UpdateContextTimeout)
	defer cancel()
	_ = ctx

	fmt.Printf("Download timeout: %v\n", client.Timeout)
	fmt.Printf("Update timeout: %v\n", constants.UpdateContextTimeout)
	// Output:
	// Download timeout: 2m0s
	// Update timeout: 10m0s
}

// Example_staleness demonstrates the default refresh policy
func Example_staleness() {
	updatedOn := time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC)
	now := updatedOn.Add(4 * time.Hour)

	fmt.Println(now.Sub(updatedOn) >= constants.DefaultDatabaseUpdateAfter)
	// Output: true
}

// Example_permissions demonstrates file permission constants
func Example_permissions() {
	fmt.Printf("%o %o\n", constants.DirPermissions, constants.FilePermissions)
	// Output: 755 644
}
