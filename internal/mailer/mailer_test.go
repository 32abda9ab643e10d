package mailer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTMLBody(t *testing.T) {
	t.Parallel()

	body := "Hi Jane,\n\nYou can watch the pitch here: https://media.example/p.webm\n\nBest,\n[Your Name]"
	require.Equal(t,
		"Hi Jane,<br><br>You can watch the pitch here: https://media.example/p.webm<br><br>Best,<br>[Your Name]",
		htmlBody(body))
}
