package sse_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nonlinear_eq/internal/sse"
)

func TestHub_PublishSubscribe(t *testing.T) {
	h := sse.NewHub(4)

	a, cancelA := h.Subscribe("run")
	b, cancelB := h.Subscribe("run")
	defer cancelB()
	other, cancelOther := h.Subscribe("other")
	defer cancelOther()

	assert.Equal(t, 2, h.Publish("run", "hello"))
	assert.Equal(t, "hello", <-a)
	assert.Equal(t, "hello", <-b)
	assert.Empty(t, other)

	cancelA()
	assert.Equal(t, 1, h.Subscribers("run"))
	assert.Equal(t, 1, h.Publish("run", "again"))
	assert.Equal(t, "again", <-b)
}

func TestHub_DropWhenFull(t *testing.T) {
	h := sse.NewHub(1)
	ch, cancel := h.Subscribe("run")
	defer cancel()

	assert.Equal(t, 1, h.Publish("run", "first"))
	assert.Equal(t, 0, h.Publish("run", "second"))
	assert.Equal(t, "first", <-ch)
}

func TestHub_UnknownID(t *testing.T) {
	h := sse.NewHub(0)
	assert.Equal(t, 0, h.Publish("missing", "x"))

	_, cancel := h.Subscribe("run")
	cancel()
	assert.Equal(t, 0, h.Subscribers("run"))
}

func TestWriteEvent(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sse.WriteEvent(&buf, "msg", `{"type":"done"}`))
	assert.Equal(t, "event: msg\ndata: {\"type\":\"done\"}\n\n", buf.String())
}
