// Package main runs end-to-end scenarios against a running API through the
// development simulate endpoint:
//   - greeting and gratitude
//   - price inquiries for known and unknown services
//   - location requests
//   - bookings with complete and missing details
//   - media messages that need a human
//
// Usage:
//
//	API_BASE_URL=... DEV_AUTH_SECRET=... go run scripts/e2e/run_e2e.go [scenario-name]
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	httpmiddleware "github.com/wolfman30/salon-bot/internal/http/middleware"
)

const testPhone = "5215500000002"

type scenario struct {
	Name string
	Fn   func(t *T)
}

// T is a lightweight test context for a single scenario.
type T struct {
	passed int
	failed int
	name   string
	client *http.Client
	base   string
	token  string
}

func (t *T) check(name string, ok bool, got string) {
	if ok {
		fmt.Printf("    PASS: %s\n", name)
		t.passed++
		return
	}
	fmt.Printf("    FAIL: %s\n          got: %q\n", name, got)
	t.failed++
}

func (t *T) send(text, mediaType string) string {
	payload, _ := json.Marshal(map[string]string{"phone": testPhone, "text": text, "media_type": mediaType})
	req, err := http.NewRequest(http.MethodPost, t.base+"/dev/simulate", bytes.NewReader(payload))
	if err != nil {
		return "request error: " + err.Error()
	}
	req.Header.Set("Content-Type", "application/json")
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return "transport error: " + err.Error()
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Sprintf("status %d: %s", resp.StatusCode, body)
	}
	var out struct {
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "decode error: " + err.Error()
	}
	fmt.Printf("    🤖 %s\n", out.Reply)
	return out.Reply
}

func containsAny(s string, subs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}

var scenarios = []scenario{
	{Name: "greeting", Fn: func(t *T) {
		reply := t.send("Hola!", "")
		t.check("reply is not empty", reply != "", reply)
		t.check("offers services", containsAny(reply, "uñas", "pestañas", "cejas", "ayudar"), reply)
	}},
	{Name: "price-known", Fn: func(t *T) {
		reply := t.send("¿Cuánto cuesta el gelish?", "")
		t.check("quotes MXN price", strings.Contains(reply, "MXN"), reply)
	}},
	{Name: "price-unknown", Fn: func(t *T) {
		reply := t.send("¿Cuánto cuesta un tatuaje?", "")
		t.check("does not invent a price", !strings.Contains(reply, "MXN"), reply)
	}},
	{Name: "location", Fn: func(t *T) {
		reply := t.send("¿Dónde están ubicadas?", "")
		t.check("shares map link", strings.Contains(reply, "maps.app.goo.gl"), reply)
	}},
	{Name: "booking-complete", Fn: func(t *T) {
		reply := t.send("Quiero agendar uñas acrílicas mañana a las 10:00", "")
		t.check("mentions service", containsAny(reply, "acrílicas"), reply)
		t.check("mentions hour", strings.Contains(reply, "10"), reply)
	}},
	{Name: "booking-missing", Fn: func(t *T) {
		reply := t.send("Quiero una cita", "")
		t.check("asks for details", containsAny(reply, "servicio", "fecha", "hora", "necesito"), reply)
	}},
	{Name: "media", Fn: func(t *T) {
		reply := t.send("", "audio")
		t.check("promises manual review", reply != "" && !strings.HasPrefix(reply, "status"), reply)
	}},
}

func main() {
	base := strings.TrimRight(os.Getenv("API_BASE_URL"), "/")
	if base == "" {
		base = "http://localhost:8080"
	}
	var token string
	if secret := os.Getenv("DEV_AUTH_SECRET"); secret != "" {
		var err error
		if token, err = httpmiddleware.IssueTesterToken(secret, "e2e", 15*time.Minute); err != nil {
			fmt.Printf("❌ token: %v\n", err)
			os.Exit(1)
		}
	}

	only := ""
	if len(os.Args) > 1 {
		only = os.Args[1]
	}

	client := &http.Client{Timeout: 90 * time.Second}
	var passed, failed int
	for _, sc := range scenarios {
		if only != "" && sc.Name != only {
			continue
		}
		fmt.Printf("\n▶ %s\n", sc.Name)
		t := &T{name: sc.Name, client: client, base: base, token: token}
		sc.Fn(t)
		passed += t.passed
		failed += t.failed
	}

	fmt.Printf("\n%d passed, %d failed\n", passed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
