package assistant_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hal9000y/mail-assistant/internal/assistant"
)

func TestParseTurn(t *testing.T) {
	cases := []struct {
		name     string
		message  string
		expected assistant.Turn
	}{
		{
			name:     "selection with action",
			message:  "email_id:18c2f_a-9 action_type:summarize",
			expected: assistant.Selection{EmailID: "18c2f_a-9", ActionType: "summarize"},
		},
		{
			name:     "selection without action",
			message:  "email_id:abc",
			expected: assistant.Selection{EmailID: "abc"},
		},
		{
			name:     "selection wins over category",
			message:  "category:SPAM email_id:abc action_type:read",
			expected: assistant.Selection{EmailID: "abc", ActionType: "read"},
		},
		{
			name:     "category is upper-cased",
			message:  "category:category_promotions",
			expected: assistant.CategoryPick{LabelID: "CATEGORY_PROMOTIONS"},
		},
		{
			name:     "composed reply keeps colons and newlines",
			message:  "reply_text:abc123:  Hi Bob,\nMeeting at 10:30 works.  ",
			expected: assistant.ComposedReply{EmailID: "abc123", Text: "Hi Bob,\nMeeting at 10:30 works."},
		},
		{
			name:     "free text",
			message:  "show me my emails",
			expected: assistant.FreeText{Text: "show me my emails"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, assistant.ParseTurn(tc.message))
		})
	}
}

func TestActionPayloadTurn(t *testing.T) {
	cases := []struct {
		name     string
		payload  assistant.ActionPayload
		expected assistant.Turn
		err      error
	}{
		{
			name:     "selection",
			payload:  assistant.ActionPayload{Type: "selection", EmailID: "m1", ActionType: "delete"},
			expected: assistant.Selection{EmailID: "m1", ActionType: "delete"},
		},
		{
			name:     "category",
			payload:  assistant.ActionPayload{Type: "category", Category: " spam "},
			expected: assistant.CategoryPick{LabelID: "SPAM"},
		},
		{
			name:     "composed reply",
			payload:  assistant.ActionPayload{Type: "composed_reply", EmailID: "m1", ReplyText: " ok \n"},
			expected: assistant.ComposedReply{EmailID: "m1", Text: "ok"},
		},
		{
			name:    "unknown type",
			payload: assistant.ActionPayload{Type: "archive"},
			err:     assistant.ErrUnknownPayload,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			turn, err := tc.payload.Turn()
			if tc.err != nil {
				require.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, turn)
		})
	}
}
