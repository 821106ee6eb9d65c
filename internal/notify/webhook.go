// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"inkpress/internal/models"
)

// WebhookGateway delivers notifications by POSTing JSON events to a
// configured push endpoint (the hosted notification SaaS the platform
// uses). One event per call; the endpoint handles device fan-out.
type WebhookGateway struct {
	endpoint string
	token    string
	client   *http.Client
	log      DeliveryLog
}

// NewWebhookGateway creates a gateway for the given endpoint. log may be
// nil to disable delivery bookkeeping.
func NewWebhookGateway(endpoint, token string, log DeliveryLog) *WebhookGateway {
	return &WebhookGateway{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      log,
	}
}

// event is the wire format of a single notification.
type event struct {
	Event      string   `json:"event"`
	PostID     string   `json:"post_id"`
	AuthorID   string   `json:"author_id"`
	Title      string   `json:"title"`
	Slug       string   `json:"slug"`
	Reason     string   `json:"reason,omitempty"`
	Recipients []string `json:"recipients,omitempty"`
}

// Notify tells the author about a moderation outcome ("post.approved" or
// "post.rejected", carrying the reason for rejections).
func (g *WebhookGateway) Notify(ctx context.Context, post *models.Post, newStatus models.PostStatus, reason string) error {
	ev := event{
		Event:    "post." + string(newStatus),
		PostID:   post.ID.String(),
		AuthorID: post.AuthorID.String(),
		Title:    post.Title,
		Slug:     post.Slug,
		Reason:   reason,
	}

	err := g.send(ctx, ev)
	g.record(ctx, post, "author", err)
	return err
}

// Broadcast fans an approved post out to newsletter subscribers.
func (g *WebhookGateway) Broadcast(ctx context.Context, post *models.Post, emails []string) error {
	if len(emails) == 0 {
		return nil
	}

	ev := event{
		Event:      "post.published",
		PostID:     post.ID.String(),
		AuthorID:   post.AuthorID.String(),
		Title:      post.Title,
		Slug:       post.Slug,
		Recipients: emails,
	}

	err := g.send(ctx, ev)
	g.record(ctx, post, "newsletter", err)
	return err
}

// send performs the HTTP call to the push endpoint.
func (g *WebhookGateway) send(ctx context.Context, ev event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("notify marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("notify request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("notify http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("notify gateway error (status %d): %s", resp.StatusCode, string(body))
	}

	return nil
}

// record writes the delivery outcome to the log when one is configured.
func (g *WebhookGateway) record(ctx context.Context, post *models.Post, channel string, err error) {
	if g.log == nil {
		return
	}
	if err != nil {
		g.log.Log(ctx, post.ID, channel, "failed", err.Error())
		return
	}
	g.log.Log(ctx, post.ID, channel, "delivered", "")
}
