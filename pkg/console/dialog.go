package console

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/jobdesk/internal/confirm"
	"github.com/marcus/jobdesk/internal/host"
	"github.com/marcus/jobdesk/pkg/console/modal"
)

const (
	actionConfirm = "confirm"
	actionOK      = "ok"
)

// settledMsg carries a finished deferred confirmation back to the event loop.
type settledMsg struct {
	ctl     *confirm.Controller
	settled confirm.Settled
}

// dialogKey identifies what the cached modal was built from.
type dialogKey struct {
	id         uint64
	processing bool
	err        error
}

// dialogView renders the open session of a confirm.Controller.
type dialogView struct {
	key   dialogKey
	modal *modal.Modal
}

func severityVariant(s confirm.Severity) modal.Variant {
	switch s {
	case confirm.SeverityError:
		return modal.VariantDanger
	case confirm.SeverityWarning:
		return modal.VariantWarning
	case confirm.SeveritySuccess:
		return modal.VariantSuccess
	default:
		return modal.VariantInfo
	}
}

// sync rebuilds the modal when the session changed and reports whether a
// session is open.
func (d *dialogView) sync(ctl *confirm.Controller, m *Model) bool {
	sess, ok := ctl.Session()
	if !ok {
		d.modal = nil
		return false
	}
	k := dialogKey{id: sess.ID, processing: sess.Processing, err: sess.Err}
	if d.modal != nil && d.key == k {
		return true
	}
	d.key = k
	d.modal = buildDialog(sess, m)
	return true
}

func buildDialog(sess confirm.Session, m *Model) *modal.Modal {
	req := sess.Request
	// Destructive confirmations start on Cancel.
	primary := actionConfirm
	switch {
	case req.Kind == confirm.KindAlert:
		primary = actionOK
	case req.Destructive:
		primary = modal.ActionCancel
	}
	md := modal.New(req.Title,
		modal.WithVariant(severityVariant(req.Severity)),
		modal.WithWidth(56),
		modal.WithPrimaryAction(primary),
		modal.WithCloseOnBackdropClick(true))

	md.AddSection(modal.Text(req.Message))
	if sess.Err != nil {
		md.AddSection(modal.Spacer())
		md.AddSection(modal.StyledText(host.UserMessage(sess.Err), modal.ErrorText))
	}
	if sess.Processing {
		md.AddSection(modal.Spacer())
		md.AddSection(modal.Custom(func(int) string {
			return m.spinner.View() + " Working…"
		}, nil))
	}
	md.AddSection(modal.Spacer())

	if req.Kind == confirm.KindAlert {
		md.AddSection(modal.Buttons(modal.Btn(" "+req.ConfirmText+" ", actionOK)))
		return md
	}

	var confirmOpts []modal.ButtonOption
	if req.Destructive {
		confirmOpts = append(confirmOpts, modal.BtnDanger())
	}
	confirmOpts = append(confirmOpts, modal.BtnDisabled(sess.Processing))
	md.AddSection(modal.Buttons(
		modal.Btn(" "+req.ConfirmText+" ", actionConfirm, confirmOpts...),
		modal.Btn(" "+req.CancelText+" ", modal.ActionCancel, modal.BtnDisabled(sess.Processing)),
	))
	return md
}

// dialogAction applies a modal action to ctl.
func dialogAction(ctl *confirm.Controller, action string) tea.Cmd {
	switch action {
	case actionConfirm:
		pending := ctl.Confirm()
		if pending == nil {
			return nil
		}
		return func() tea.Msg {
			return settledMsg{ctl: ctl, settled: pending.Wait()}
		}
	case actionOK:
		ctl.Acknowledge()
	case modal.ActionCancel:
		// refused while an action is in flight
		ctl.Cancel()
	}
	return nil
}
