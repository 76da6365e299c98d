// Package sse — hub для рассылки событий решения подписчикам по id запуска.
package sse

import (
	"fmt"
	"io"
	"sync"
)

// Hub хранит подписчиков по id запуска
type Hub struct {
	mu     sync.Mutex
	conns  map[string][]chan string
	buffer int
}

// NewHub создаёт hub; buffer — ёмкость канала одного подписчика.
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{conns: map[string][]chan string{}, buffer: buffer}
}

// Subscribe подписывает клиента на id, возвращает канал и функцию-unsubscribe
func (h *Hub) Subscribe(id string) (<-chan string, func()) {
	ch := make(chan string, h.buffer)

	h.mu.Lock()
	h.conns[id] = append(h.conns[id], ch)
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		list := h.conns[id]
		for i, c := range list {
			if c == ch {
				h.conns[id] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		if len(h.conns[id]) == 0 {
			delete(h.conns, id)
		}
	}

	return ch, cancel
}

// Publish отсылает сообщение всем подписчикам id и возвращает число доставленных.
// Переполненные каналы пропускаются.
func (h *Hub) Publish(id, msg string) int {
	h.mu.Lock()
	list := append([]chan string(nil), h.conns[id]...)
	h.mu.Unlock()

	sent := 0
	for _, ch := range list {
		select {
		case ch <- msg:
			sent++
		default:
			// игнорируем, если канал забит
		}
	}
	return sent
}

// Subscribers — число подписчиков id
func (h *Hub) Subscribers(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns[id])
}

// WriteEvent пишет одно событие в формате text/event-stream.
func WriteEvent(w io.Writer, event, data string) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
