// Package queue defines message payloads exchanged over the message
// broker and the background consumer that executes booking commands.
package queue

import "encoding/json"

// BookingCreatedEvent is published after a booking is successfully
// created.  It carries enough for downstream consumers to notify or
// aggregate without querying the primary database.
type BookingCreatedEvent struct {
    BookingGUID   string `json:"booking_guid"`
    ServiceGUID   string `json:"service_guid"`
    UserGUID      string `json:"user_guid"`
    NumberPersons int    `json:"number_persons"`
    Status        string `json:"status"`
    CreatedBy     string `json:"created_by"`
    CreatedAt     string `json:"created_at"`
}

// BookingCommand is the inbound message shape on the command queue.  The
// token is the same bearer access token the HTTP API accepts; the value
// payload depends on the command and mirrors the corresponding request
// body.
type BookingCommand struct {
    Command string          `json:"command"`
    Token   string          `json:"token"`
    Value   json.RawMessage `json:"value"`
}

// Command names accepted on the booking command queue.
const (
    CmdCreateBooking = "create_booking"
    CmdChangeStatus  = "change_booking_status"
    CmdUpdateBooking = "update_booking"
    CmdDeleteBooking = "delete_booking"
)
