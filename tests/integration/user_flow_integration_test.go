//go:build integration

package integration_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

func baseURL() string {
	if v := os.Getenv("RAMP_TEST_BASE_URL"); strings.TrimSpace(v) != "" {
		return strings.TrimRight(v, "/")
	}
	return "http://127.0.0.1:18080"
}

func TestUserJourneyIntegration(t *testing.T) {
	client := &http.Client{Timeout: 5 * time.Second}
	base := baseURL()

	userEmail := fmt.Sprintf("integration_%d@example.com", time.Now().UnixNano())
	password := "Secret123!"

	var registerResp struct {
		Token  string `json:"token"`
		UserID string `json:"user_id"`
	}
	doPost(t, client, base+"/api/auth/register", "", map[string]string{
		"email":    userEmail,
		"password": password,
	}, &registerResp)
	if registerResp.Token == "" || registerResp.UserID == "" {
		t.Fatalf("unexpected register response: %+v", registerResp)
	}

	var loginResp struct {
		Token string `json:"token"`
	}
	doPost(t, client, base+"/api/auth/login", "", map[string]string{
		"email":    userEmail,
		"password": password,
	}, &loginResp)
	token := loginResp.Token
	if token == "" {
		t.Fatalf("login did not return token")
	}

	var studentResp struct {
		ID string `json:"id"`
	}
	doPost(t, client, base+"/api/students", token, map[string]string{
		"name": fmt.Sprintf("Student %d", time.Now().UnixNano()),
	}, &studentResp)
	if studentResp.ID == "" {
		t.Fatalf("expected student id in response")
	}

	var entryResp struct {
		ID string `json:"id"`
	}
	doPost(t, client, base+"/api/entries", token, map[string]any{
		"studentId":     studentResp.ID,
		"skillId":       "k1",
		"rating":        1,
		"promptDetails": "two verbal prompts",
		"tokens":        2,
		"delivered":     true,
	}, &entryResp)
	if entryResp.ID == "" {
		t.Fatalf("expected entry id in response")
	}

	listURL := fmt.Sprintf("%s/api/entries?student_id=%s", base, studentResp.ID)
	resp, err := client.Get(listURL)
	if err != nil {
		t.Fatalf("list request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("list status %d body %s", resp.StatusCode, string(body))
	}
	var rows []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 entry for student, got %d", len(rows))
	}

	exportResp, err := client.Get(base + "/api/export?student_id=" + studentResp.ID)
	if err != nil {
		t.Fatalf("export request failed: %v", err)
	}
	defer exportResp.Body.Close()
	if exportResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(exportResp.Body)
		t.Fatalf("export status %d body %s", exportResp.StatusCode, string(body))
	}
	csvData, err := io.ReadAll(exportResp.Body)
	if err != nil {
		t.Fatalf("read export data: %v", err)
	}
	csvContent := string(csvData)
	if !strings.Contains(csvContent, "two verbal prompts") {
		t.Fatalf("export csv did not contain entry data; csv=%s", csvContent)
	}
}

func doPost(t *testing.T, client *http.Client, url, token string, body any, out any) {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http post %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("unexpected status %d for %s: %s", resp.StatusCode, url, string(bodyBytes))
	}
	if out != nil {
		decoder := json.NewDecoder(resp.Body)
		if err := decoder.Decode(out); err != nil && err != io.EOF {
			t.Fatalf("decode response from %s: %v", url, err)
		}
	}
}
