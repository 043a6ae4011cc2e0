package queue

import (
    "encoding/json"
    "testing"
    "time"

    "github.com/velezhnev/tourbook/internal/utils"
)

const testSecret = "consumer-test-secret"

func commandBody(t *testing.T, command, token string, value any) []byte {
    t.Helper()
    raw, err := json.Marshal(value)
    if err != nil {
        t.Fatalf("marshal value: %v", err)
    }
    body, err := json.Marshal(BookingCommand{Command: command, Token: token, Value: raw})
    if err != nil {
        t.Fatalf("marshal command: %v", err)
    }
    return body
}

func TestHandleCommandRejectsMalformedMessage(t *testing.T) {
    t.Parallel()

    if err := handleCommand([]byte("{not json"), nil, testSecret); err == nil {
        t.Error("malformed message should be rejected")
    }
}

func TestHandleCommandRejectsBadToken(t *testing.T) {
    t.Parallel()

    body := commandBody(t, CmdDeleteBooking, "garbage-token", map[string]string{"guid": "b1"})
    if err := handleCommand(body, nil, testSecret); err == nil {
        t.Error("command with an invalid token should be rejected")
    }
}

func TestHandleCommandRejectsUnknownCommand(t *testing.T) {
    t.Parallel()

    tok, err := utils.IssueToken(testSecret, "HS256", "user-guid-1", time.Hour)
    if err != nil {
        t.Fatalf("issue: %v", err)
    }
    body := commandBody(t, "drop_all_bookings", tok, map[string]string{})
    if err := handleCommand(body, nil, testSecret); err == nil {
        t.Error("unknown command should be rejected")
    }
}
