package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const videoSDKTokenTTL = 24 * time.Hour

var ErrVideoSDKNotConfigured = errors.New("VIDEOSDK_API_KEY and VIDEOSDK_SECRET_KEY must be set")

// VideoSDKClient talks to the VideoSDK REST API.
type VideoSDKClient struct {
	apiKey   string
	secret   []byte
	endpoint string
	client   *http.Client
	now      func() time.Time
}

func NewVideoSDKClient(apiKey, secret, endpoint string) *VideoSDKClient {
	return &VideoSDKClient{
		apiKey:   apiKey,
		secret:   []byte(secret),
		endpoint: endpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
		now:      time.Now,
	}
}

type videoSDKClaims struct {
	APIKey      string   `json:"apikey"`
	Permissions []string `json:"permissions"`
	Roles       []string `json:"roles"`
	jwt.RegisteredClaims
}

// GenerateToken mints a participant token valid for 24 hours.
func (v *VideoSDKClient) GenerateToken() (string, error) {
	if v.apiKey == "" || len(v.secret) == 0 {
		return "", ErrVideoSDKNotConfigured
	}
	now := v.now()
	claims := &videoSDKClaims{
		APIKey:      v.apiKey,
		Permissions: []string{"allow_join"},
		Roles:       []string{"rtc"},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(videoSDKTokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// CreateRoom creates a room and returns its id.
func (v *VideoSDKClient) CreateRoom(ctx context.Context) (string, error) {
	var out struct {
		RoomID string `json:"roomId"`
	}
	if err := v.post(ctx, "/rooms", map[string]any{}, &out); err != nil {
		return "", err
	}
	if out.RoomID == "" {
		return "", errors.New("videosdk: response has no roomId")
	}
	return out.RoomID, nil
}

// StartTranscription asks VideoSDK to transcribe roomID and deliver the text
// to webhookURL.
func (v *VideoSDKClient) StartTranscription(ctx context.Context, roomID, webhookURL string) error {
	body := map[string]any{"roomId": roomID}
	if webhookURL != "" {
		body["webhookUrl"] = webhookURL
	}
	return v.post(ctx, "/transcription/start", body, nil)
}

func (v *VideoSDKClient) StopTranscription(ctx context.Context, roomID string) error {
	return v.post(ctx, "/transcription/end", map[string]any{"roomId": roomID}, nil)
}

func (v *VideoSDKClient) post(ctx context.Context, path string, body any, out any) error {
	token, err := v.GenerateToken()
	if err != nil {
		return err
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("authorization", token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("videosdk %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("videosdk %s: status %d: %s", path, resp.StatusCode, bytes.TrimSpace(msg))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("videosdk %s: decode: %w", path, err)
	}
	return nil
}
