package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/germanamz/recipebot/pkg/chats/chat"
	"github.com/germanamz/recipebot/pkg/chats/message"
	"github.com/germanamz/recipebot/pkg/chats/role"
	"github.com/germanamz/recipebot/pkg/dispatcher"
	"github.com/germanamz/recipebot/pkg/modeladapter/usage"
)

const previewWidth = 72

// thinkingMessages are displayed while waiting for a reply.
var thinkingMessages = []string{
	"Preheating the oven...",
	"Checking the pantry...",
	"Sharpening knives...",
	"Tasting the sauce...",
	"Flipping through cookbooks...",
	"Measuring ingredients...",
	"Letting it simmer...",
}

// randomThinkingMessage returns a random thinking message.
func randomThinkingMessage() string {
	return thinkingMessages[rand.IntN(len(thinkingMessages))] //nolint:gosec // cosmetic randomness
}

// session is one interactive chat. It owns the conversation and replaces it
// with each successful dispatch result.
type session struct {
	dispatcher *dispatcher.Dispatcher
	usage      *usage.Tracker
	conv       chat.Conversation
	out        io.Writer
	// spinnerOut receives the waiting animation; nil disables it.
	spinnerOut io.Writer
	render     func(string) string
}

func newSession(d *dispatcher.Dispatcher, u *usage.Tracker, out io.Writer) *session {
	return &session{
		dispatcher: d,
		usage:      u,
		out:        out,
		render:     func(s string) string { return renderMarkdown(formatRecipeTags(s)) },
	}
}

// loop reads lines from in until EOF, a quit command, or ctx is done.
func (s *session) loop(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(s.out, userStyle.Render("you> "))

		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(s.out)
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			fmt.Fprintln(s.out)
			return nil
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if s.handleCommand(line) {
				return nil
			}
			continue
		}

		s.send(ctx, line)
	}
}

// handleCommand runs a slash command and reports whether the loop should end.
func (s *session) handleCommand(line string) bool {
	name, _, _ := strings.Cut(line, " ")

	switch strings.ToLower(name) {
	case "/quit", "/exit":
		fmt.Fprintln(s.out, mutedStyle.Render("Bye, happy cooking!"))
		return true
	case "/help":
		fmt.Fprintln(s.out, helpText())
	case "/reset":
		s.conv = nil
		fmt.Fprintln(s.out, mutedStyle.Render("Conversation cleared."))
	case "/history":
		s.printHistory()
	case "/tokens":
		s.printTokens()
	default:
		fmt.Fprintln(s.out, errorStyle.Render(fmt.Sprintf("unknown command %s, type /help", name)))
	}

	return false
}

func helpText() string {
	return mutedStyle.Render(strings.Join([]string{
		"Commands:",
		"  /help     show this help",
		"  /reset    start a new conversation",
		"  /history  list the messages so far",
		"  /tokens   show token usage",
		"  /quit     exit (also /exit)",
	}, "\n"))
}

// send appends a user turn and dispatches the conversation. On failure the
// previous conversation is kept.
func (s *session) send(ctx context.Context, text string) {
	pending := s.conv.Append(message.User(text))

	stop := s.startSpinner()
	next, err := s.dispatcher.Dispatch(ctx, pending)
	stop()

	if err != nil {
		fmt.Fprintln(s.out, errorStyle.Render("error: "+err.Error()))
		return
	}

	s.conv = next
	reply, _ := next.Last()
	fmt.Fprintln(s.out, botStyle.Render("recipebot>"))
	fmt.Fprintln(s.out, s.render(reply.Content))
	fmt.Fprintln(s.out)
}

func (s *session) printHistory() {
	shown := 0
	for i, m := range s.conv {
		if m.Role == role.System {
			continue
		}
		label := userStyle.Render(fmt.Sprintf("%-9s", m.Role))
		if m.Role == role.Assistant {
			label = botStyle.Render(fmt.Sprintf("%-9s", m.Role))
		}
		fmt.Fprintf(s.out, "%3d %s %s\n", i, label, truncate(m.Content, previewWidth))
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(s.out, mutedStyle.Render("No messages yet."))
	}
}

func (s *session) printTokens() {
	if s.usage == nil {
		fmt.Fprintln(s.out, mutedStyle.Render("Token usage is not reported by this provider."))
		return
	}

	total := s.usage.Total()
	fmt.Fprintf(s.out, "%d calls, %s in / %s out (%s total)\n",
		s.usage.Count(), fmtTokens(total.InputTokens), fmtTokens(total.OutputTokens), fmtTokens(total.Total()))

	byModel := s.usage.ByModel()
	models := make([]string, 0, len(byModel))
	for m := range byModel {
		models = append(models, m)
	}
	slices.Sort(models)
	for _, m := range models {
		fmt.Fprintf(s.out, "  %s: %s\n", m, byModel[m])
	}
}

// startSpinner animates a waiting indicator until the returned func is
// called.
func (s *session) startSpinner() func() {
	if s.spinnerOut == nil {
		return func() {}
	}

	sp := spinner.MiniDot
	text := randomThinkingMessage()
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(sp.FPS)
		defer ticker.Stop()
		for i := 0; ; i++ {
			frame := sp.Frames[i%len(sp.Frames)]
			fmt.Fprintf(s.spinnerOut, "\r%s %s", spinStyle.Render(frame), mutedStyle.Render(text))
			select {
			case <-done:
				fmt.Fprint(s.spinnerOut, "\r\033[K")
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		close(done)
		wg.Wait()
	}
}
