package utils

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorShape(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, "Payment type already exists", http.StatusBadRequest)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"error": "Payment type already exists"}, body)
}

func TestWriteJSONStatus(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSONStatus(rr, http.StatusCreated, map[string]int{"id": 7})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.JSONEq(t, `{"id":7}`, rr.Body.String())
}

func TestWriteJSONEncodeFailure(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSON(rr, map[string]interface{}{"bad": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "failed to encode JSON response")
}

func TestWriteMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteMessage(rr, "Transaction deleted successfully")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"Transaction deleted successfully"}`, rr.Body.String())
}

func TestErrorHandler(t *testing.T) {
	var buf bytes.Buffer
	Logger.Out = &buf
	Logger.SetFormatter(&logrus.JSONFormatter{})
	Logger.SetReportCaller(false)

	assert.NoError(t, ErrorHandler(nil, "ignored"))
	assert.Zero(t, buf.Len())

	cause := errors.New("connection refused")
	err := ErrorHandler(cause, "Failed to fetch transactions", logrus.Fields{"op": "list"})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Failed to fetch transactions: connection refused", err.Error())

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Failed to fetch transactions", entry["msg"])
	assert.Equal(t, "connection refused", entry["error"])
	assert.Equal(t, "list", entry["op"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, logrus.WarnLevel, ParseLevel("WARN"))
	assert.Equal(t, logrus.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, logrus.InfoLevel, ParseLevel(""))
	assert.Equal(t, logrus.InfoLevel, ParseLevel("verbose"))
}
