package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/uilayers/internal/shared/types"
)

const maxEventLines = 12

var watchLayers []string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow layer state and lifecycle events live",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := make([]types.Layer, 0, len(watchLayers))
		for _, raw := range watchLayers {
			l, err := types.ParseLayer(raw)
			if err != nil {
				return err
			}
			filter = append(filter, l)
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		c := newClient()
		stream, err := c.Stream(ctx)
		if err != nil {
			return err
		}
		defer stream.Close()
		if len(filter) > 0 {
			if err := stream.Subscribe(filter...); err != nil {
				return err
			}
		}

		_, err = tea.NewProgram(newWatchModel(c.BaseURL(), stream.Messages()), tea.WithAltScreen()).Run()
		if err != nil {
			return err
		}
		return stream.Err()
	},
}

func init() {
	watchCmd.Flags().StringSliceVar(&watchLayers, "layer", nil, "Only show events for these layers")
}

type streamMsg types.WSMessage

type streamClosedMsg struct{}

type watchModel struct {
	host     string
	messages <-chan types.WSMessage
	snapshot *types.Snapshot
	events   []types.Event
	status   string
	closed   bool
	width    int
}

func newWatchModel(host string, messages <-chan types.WSMessage) watchModel {
	return watchModel{host: host, messages: messages, status: "connecting"}
}

func (m watchModel) waitForMessage() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.messages
		if !ok {
			return streamClosedMsg{}
		}
		return streamMsg(msg)
	}
}

func (m watchModel) Init() tea.Cmd {
	return m.waitForMessage()
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "c":
			m.events = nil
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case streamClosedMsg:
		m.closed = true
		m.status = "disconnected"
		return m, nil

	case streamMsg:
		m.apply(types.WSMessage(msg))
		return m, m.waitForMessage()
	}
	return m, nil
}

// apply folds one stream frame into the view
func (m *watchModel) apply(msg types.WSMessage) {
	switch msg.Type {
	case "system":
		m.status = "connected"
	case "state":
		m.snapshot = msg.State
	case "subscribe":
		m.status = "filter: " + formatLayers(msg.Filter)
	case "error":
		m.status = "error: " + msg.Message
	case "event":
		if msg.Event == nil {
			return
		}
		m.events = append(m.events, *msg.Event)
		if len(m.events) > maxEventLines {
			m.events = m.events[len(m.events)-maxEventLines:]
		}
		m.foldEvent(*msg.Event)
	}
}

// foldEvent keeps the snapshot current between full state frames
func (m *watchModel) foldEvent(evt types.Event) {
	if m.snapshot == nil {
		return
	}
	s := m.snapshot
	info := types.InstanceInfo{
		ID:        evt.InstanceID,
		Tag:       evt.Tag,
		Layer:     evt.Layer,
		State:     evt.State,
		SortOrder: evt.Layer.SortOrder(),
		OpenedAt:  evt.Timestamp,
	}

	switch evt.Type {
	case types.EventEntered:
		switch evt.Layer {
		case types.LayerExclusive:
			s.Exclusive = &info
		case types.LayerPanel:
			s.Panels = append(s.Panels, info)
		case types.LayerOverlay:
			s.Overlays = append(s.Overlays, info)
		}
	case types.EventPaused, types.EventResumed:
		for i := range s.Panels {
			if s.Panels[i].ID == evt.InstanceID {
				s.Panels[i].State = evt.State
			}
		}
	case types.EventClosed:
		if s.Exclusive != nil && s.Exclusive.ID == evt.InstanceID {
			s.Exclusive = nil
		}
		s.Panels = without(s.Panels, evt.InstanceID)
		s.Overlays = without(s.Overlays, evt.InstanceID)
	}
}

func without(list []types.InstanceInfo, instanceID string) []types.InstanceInfo {
	out := list[:0]
	for _, info := range list {
		if info.ID != instanceID {
			out = append(out, info)
		}
	}
	return out
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("uictl watch") + " " + mutedStyle.Render(m.host) + "\n\n")

	var layers strings.Builder
	if m.snapshot == nil {
		layers.WriteString(mutedStyle.Render("waiting for state..."))
	} else {
		renderLayers(&layers, *m.snapshot)
	}
	b.WriteString(boxStyle.Render(strings.TrimRight(layers.String(), "\n")) + "\n")

	var log strings.Builder
	log.WriteString(headerStyle.Render("Events") + "\n")
	if len(m.events) == 0 {
		log.WriteString(mutedStyle.Render("(none yet)"))
	}
	for i, evt := range m.events {
		if i > 0 {
			log.WriteString("\n")
		}
		log.WriteString(formatEvent(evt))
	}
	b.WriteString(boxStyle.Render(log.String()) + "\n")

	status := m.status
	if m.closed {
		status = errorStyle.Render(status)
	}
	b.WriteString(footerStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, status, "  q quit  c clear")))
	return b.String()
}

func formatEvent(evt types.Event) string {
	line := fmt.Sprintf("%s %-16s %-9s %s",
		evt.Timestamp.Format(time.TimeOnly),
		evt.Type,
		evt.Layer,
		evt.Tag)
	if evt.Error != "" {
		return errorStyle.Render(line + " " + evt.Error)
	}
	if evt.Type == types.EventClosed {
		return mutedStyle.Render(line)
	}
	return line
}
