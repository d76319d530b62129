package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"testing"

	"storeapi/internal/repositories"
	"storeapi/internal/services"

	"github.com/stretchr/testify/mock"
)

const testExchange = "test-exchange"

// MockPublisher is a mock implementation of services.EventPublisher.
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(exchange, routingKey string, body []byte) error {
	args := m.Called(exchange, routingKey, body)
	return args.Error(0)
}

// eventOfType matches a published body whose type equals eventType.
func eventOfType(eventType string) interface{} {
	return mock.MatchedBy(func(body []byte) bool {
		var ev services.Event
		return json.Unmarshal(body, &ev) == nil && ev.Type == eventType && ev.ID != ""
	})
}

// MockTxManager is a mock implementation of repositories.TxManager.
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) WithinTx(ctx context.Context, fn func(r repositories.Repositories) error) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var errDatabaseDown = errors.New("database down")

func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}
