/*
 * Copyright 2023 The RuleGo Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package msgctx adapts a message envelope (id, timestamp, body, metadata,
// type) into the opaque context value predicate.Predicate.Call expects, so
// the same manifest rule can run unmodified whether it is evaluated against
// a bare map[string]any or against a full message envelope.
package msgctx

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Message is a minimal envelope carrying a rule's input plus the metadata
// fields (id, ts, type) a routed message typically carries, generalised to
// any producer-evaluable payload.
type Message struct {
	ID       string
	Ts       int64
	Type     string
	Data     map[string]any
	Metadata map[string]any
}

// New builds a Message, defaulting ID to a fresh UUIDv4 and Ts to now in
// milliseconds since epoch when left zero.
func New(data map[string]any, opts ...Option) Message {
	m := Message{
		Data:     data,
		Metadata: make(map[string]any),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.ID == "" {
		id, _ := uuid.NewV4()
		m.ID = id.String()
	}
	if m.Ts <= 0 {
		m.Ts = time.Now().UnixMilli()
	}
	return m
}

// Option configures a Message built with New.
type Option func(*Message)

// WithID sets an explicit message ID instead of generating one.
func WithID(id string) Option {
	return func(m *Message) { m.ID = id }
}

// WithType sets the message type.
func WithType(t string) Option {
	return func(m *Message) { m.Type = t }
}

// WithMetadata sets the message metadata map.
func WithMetadata(md map[string]any) Option {
	return func(m *Message) { m.Metadata = md }
}

// Context flattens the Message into the evaluation context shape predicate
// leaves are written against: top-level "id", "ts", "type", "data" and
// "metadata" keys, mirroring the field names an expr-lang or JS producer
// would reference (msg.temperature becomes ctx["data"]["temperature"]).
func (m Message) Context() map[string]any {
	return map[string]any{
		"id":       m.ID,
		"ts":       m.Ts,
		"type":     m.Type,
		"data":     m.Data,
		"metadata": m.Metadata,
	}
}
