package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := NewClient("TEST_TOKEN")
	c.BaseURL = srv.URL
	return c
}

func TestGetUpdates(t *testing.T) {
	t.Parallel()
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/botTEST_TOKEN/getUpdates", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var params map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		require.EqualValues(t, 42, params["offset"])

		_, _ = w.Write([]byte(`{"ok":true,"result":[
			{"update_id":43,"message":{"message_id":1,"chat":{"id":9},
			 "from":{"id":7,"first_name":"Nika"},"text":"/balance"}},
			{"update_id":44,"callback_query":{"id":"cb1","from":{"id":7},
			 "message":{"message_id":2,"chat":{"id":9}},"data":"confirm|tok"}}
		]}`))
	})

	updates, err := c.GetUpdates(context.Background(), 42, 10)
	require.NoError(t, err)
	require.Len(t, updates, 2)
	require.EqualValues(t, 43, updates[0].UpdateID)
	require.Equal(t, "/balance", updates[0].Message.Text)
	require.Equal(t, "Nika", updates[0].Message.From.FirstName)
	require.Equal(t, "confirm|tok", updates[1].CallbackQuery.Data)
}

func TestSendMessageWithKeyboard(t *testing.T) {
	t.Parallel()
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/botTEST_TOKEN/sendMessage", r.URL.Path)

		var params struct {
			ChatID      int64                 `json:"chat_id"`
			Text        string                `json:"text"`
			ReplyMarkup *InlineKeyboardMarkup `json:"reply_markup"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		require.EqualValues(t, 9, params.ChatID)
		require.Equal(t, "pick a prize", params.Text)
		require.NotNil(t, params.ReplyMarkup)
		require.Equal(t, "select|kiss|100", params.ReplyMarkup.InlineKeyboard[0][0].CallbackData)

		_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":5,"chat":{"id":9}}}`))
	})

	markup := &InlineKeyboardMarkup{InlineKeyboard: [][]InlineKeyboardButton{
		{{Text: "Kiss — 100€", CallbackData: "select|kiss|100"}},
	}}
	require.NoError(t, c.SendMessage(context.Background(), 9, "pick a prize", markup))
}

func TestAPIErrorSurfacesDescription(t *testing.T) {
	t.Parallel()
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	})

	err := c.SendMessage(context.Background(), 1, "hi", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "chat not found")
}

func TestGetFileAndDownload(t *testing.T) {
	t.Parallel()
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/botTEST_TOKEN/getFile":
			_, _ = w.Write([]byte(`{"ok":true,"result":{"file_id":"f1","file_path":"photos/f1.jpg"}}`))
		case "/file/botTEST_TOKEN/photos/f1.jpg":
			_, _ = w.Write([]byte("jpeg-bytes"))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	f, err := c.GetFile(context.Background(), "f1")
	require.NoError(t, err)
	require.Equal(t, "photos/f1.jpg", f.FilePath)

	data, err := c.DownloadFile(context.Background(), f.FilePath)
	require.NoError(t, err)
	require.Equal(t, []byte("jpeg-bytes"), data)
}
