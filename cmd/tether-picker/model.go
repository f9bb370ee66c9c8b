// Copyright 2026 The Tetherlock Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tetherlock/tetherlock/lib/ipc"
	"github.com/tetherlock/tetherlock/lib/usb"
)

// KeyMap defines the picker's key bindings.
type KeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Tether  key.Binding
	Severe  key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// alongside arrow keys.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Tether: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "tether"),
	),
	Severe: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "severe all"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "esc", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	tetheredStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	noticeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// deviceItem is one list row: an attached device plus whether the
// daemon currently tethers it.
type deviceItem struct {
	info     usb.DeviceInfo
	tethered bool
}

// devicesMsg carries a refreshed device list through the message loop.
type devicesMsg struct {
	items []deviceItem
	err   error
}

// resultMsg carries the outcome of a tether or severe request.
type resultMsg struct {
	text string
	err  error
}

type model struct {
	keys   KeyMap
	client *ipc.Client

	devices []deviceItem
	cursor  int

	confirmingSevere bool
	notice           string
	noticeIsError    bool
	loading          bool
}

func newModel(client *ipc.Client) model {
	return model{
		keys:    DefaultKeyMap,
		client:  client,
		loading: true,
	}
}

func (m model) Init() tea.Cmd {
	return loadDevices(m.client)
}

// loadDevices enumerates the bus and asks the daemon which devices are
// tethered. A daemon that is down or refuses the connection degrades
// to an untethered listing rather than an error.
func loadDevices(client *ipc.Client) tea.Cmd {
	return func() tea.Msg {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		bus := usb.NewSystemBus(logger)

		devices, err := bus.ListDevices()
		if err != nil {
			return devicesMsg{err: err}
		}

		status, err := client.Status()
		if err != nil {
			status = ""
		}
		return devicesMsg{items: markTethered(devices, status)}
	}
}

// markTethered matches the daemon's status lines against the device
// list. Each status line starts with the device summary, followed by
// the watch-state tag.
func markTethered(devices []usb.DeviceInfo, status string) []deviceItem {
	items := make([]deviceItem, 0, len(devices))
	for _, device := range devices {
		tethered := false
		for _, line := range strings.Split(status, "\n") {
			if strings.HasPrefix(line, device.Summary()+" [") {
				tethered = true
				break
			}
		}
		items = append(items, deviceItem{info: device, tethered: tethered})
	}
	return items
}

func tetherDevice(client *ipc.Client, deviceKey usb.DeviceKey) tea.Cmd {
	return func() tea.Msg {
		response, err := client.Tether(deviceKey.Bus, deviceKey.Address)
		if err != nil && needsElevation(err) {
			response, err = elevatedTether(client.SocketPath, deviceKey)
		}
		return resultMsg{text: response, err: err}
	}
}

func severeAll(client *ipc.Client) tea.Cmd {
	return func() tea.Msg {
		response, err := client.Severe()
		if err != nil && needsElevation(err) {
			response, err = elevatedSevere(client.SocketPath)
		}
		return resultMsg{text: response, err: err}
	}
}

// needsElevation reports whether the failure looks like a privilege
// problem rather than a protocol one: the daemon silently closing the
// connection (peer credential mismatch) or the socket refusing the
// dial outright.
func needsElevation(err error) bool {
	return errors.Is(err, ipc.ErrRejected) || errors.Is(err, os.ErrPermission)
}

func (m model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case devicesMsg:
		m.loading = false
		if message.err != nil {
			m.notice = message.err.Error()
			m.noticeIsError = true
			return m, nil
		}
		m.devices = message.items
		if m.cursor >= len(m.devices) {
			m.cursor = max(0, len(m.devices)-1)
		}
		return m, nil

	case resultMsg:
		if message.err != nil {
			m.notice = message.err.Error()
			m.noticeIsError = true
			return m, nil
		}
		m.notice = message.text
		m.noticeIsError = false
		return m, loadDevices(m.client)

	case tea.KeyMsg:
		return m.handleKey(message)
	}
	return m, nil
}

func (m model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmingSevere {
		switch message.String() {
		case "y", "Y":
			m.confirmingSevere = false
			return m, severeAll(m.client)
		default:
			m.confirmingSevere = false
			m.notice = "severe cancelled"
			m.noticeIsError = false
			return m, nil
		}
	}

	switch {
	case key.Matches(message, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(message, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(message, m.keys.Down):
		if m.cursor < len(m.devices)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(message, m.keys.Refresh):
		m.loading = true
		return m, loadDevices(m.client)

	case key.Matches(message, m.keys.Tether):
		if len(m.devices) == 0 {
			return m, nil
		}
		selected := m.devices[m.cursor]
		if selected.tethered {
			m.notice = fmt.Sprintf("device %s is already tethered", selected.info.Key)
			m.noticeIsError = false
			return m, nil
		}
		m.notice = "tethering " + selected.info.Summary() + " ..."
		m.noticeIsError = false
		return m, tetherDevice(m.client, selected.info.Key)

	case key.Matches(message, m.keys.Severe):
		m.confirmingSevere = true
		return m, nil
	}
	return m, nil
}

func (m model) View() string {
	var view strings.Builder
	view.WriteString(titleStyle.Render("Tether a USB device"))
	view.WriteString("\n\n")

	switch {
	case m.loading:
		view.WriteString("enumerating USB devices ...\n")
	case len(m.devices) == 0:
		view.WriteString("no USB devices found\n")
	default:
		for i, item := range m.devices {
			cursor := "  "
			line := item.info.Summary()
			if item.tethered {
				line += tetheredStyle.Render("  [tethered]")
			}
			if i == m.cursor {
				cursor = cursorStyle.Render("> ")
			}
			view.WriteString(cursor + line + "\n")
		}
	}

	view.WriteString("\n")
	if m.confirmingSevere {
		view.WriteString(noticeStyle.Render("clear ALL tethers without locking? (y/n)"))
		view.WriteString("\n")
	} else if m.notice != "" {
		style := noticeStyle
		if m.noticeIsError {
			style = errorStyle
		}
		view.WriteString(style.Render(m.notice))
		view.WriteString("\n")
	}

	view.WriteString(helpStyle.Render("enter tether · s severe all · r refresh · q quit"))
	view.WriteString("\n")
	return view.String()
}
