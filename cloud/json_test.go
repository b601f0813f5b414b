package cloud

import "testing"

func TestJSONGetString(t *testing.T) {
	body := `{"status":"claimed","device_id":"dev-1"}`

	status, err := jsonGetString(body, "status")
	if err != nil || status != "claimed" {
		t.Fatalf("status = %q, err = %v", status, err)
	}

	id, err := jsonGetString(body, "device_id")
	if err != nil || id != "dev-1" {
		t.Fatalf("device_id = %q, err = %v", id, err)
	}

	if _, err := jsonGetString(body, "missing"); err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestJSONGetUint(t *testing.T) {
	body := `{"poll_interval": 30, "other": 7}`

	v, err := jsonGetUint(body, "poll_interval")
	if err != nil || v != 30 {
		t.Fatalf("poll_interval = %d, err = %v", v, err)
	}
}

func TestJSONGetStringWithWhitespaceAfterColon(t *testing.T) {
	body := `{"broker":   "wss://broker.example"}`
	v, err := jsonGetString(body, "broker")
	if err != nil || v != "wss://broker.example" {
		t.Fatalf("broker = %q, err = %v", v, err)
	}
}
