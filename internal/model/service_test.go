package model

import (
    "encoding/json"
    "errors"
    "testing"
    "time"
)

func TestParseDateTimeRoundTrip(t *testing.T) {
    t.Parallel()

    in := "13-07-2026 15:30"
    got, err := ParseDateTime(in)
    if err != nil {
        t.Fatalf("parse %q: %v", in, err)
    }
    if got.Day() != 13 || got.Month() != time.July || got.Year() != 2026 {
        t.Errorf("parsed date wrong: %v", got)
    }
    if got.Hour() != 15 || got.Minute() != 30 {
        t.Errorf("parsed time wrong: %v", got)
    }
    if out := FormatDateTime(got); out != in {
        t.Errorf("format = %q, want %q", out, in)
    }
}

func TestParseDateTimeRejectsOtherLayouts(t *testing.T) {
    t.Parallel()

    for _, in := range []string{"", "2026-07-13 15:30", "13/07/2026 15:30", "13-07-2026", "15:30"} {
        if _, err := ParseDateTime(in); !errors.Is(err, ErrInvalidDateTime) {
            t.Errorf("parse %q: got %v, want ErrInvalidDateTime", in, err)
        }
    }
}

func TestValidServiceType(t *testing.T) {
    t.Parallel()

    for _, s := range []string{"tour", "rent"} {
        if !ValidServiceType(s) {
            t.Errorf("type %q should be valid", s)
        }
    }
    for _, s := range []string{"", "Tour", "sale"} {
        if ValidServiceType(s) {
            t.Errorf("type %q should be invalid", s)
        }
    }
}

func TestServiceJSONDateTime(t *testing.T) {
    t.Parallel()

    dt, _ := ParseDateTime("01-02-2027 09:00")
    s := Service{GUID: "g", Name: "ferry tour", DateTime: dt, MaxNumberPersons: 12, Type: TypeTour}
    raw, err := json.Marshal(s)
    if err != nil {
        t.Fatalf("marshal: %v", err)
    }
    var m map[string]any
    if err := json.Unmarshal(raw, &m); err != nil {
        t.Fatalf("unmarshal: %v", err)
    }
    if m["datetime"] != "01-02-2027 09:00" {
        t.Errorf("datetime field = %v, want display format", m["datetime"])
    }
}
