package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/orbit/internal/client/biometric"
	"github.com/dmitrijs2005/orbit/internal/client/lifecycle"
	"github.com/dmitrijs2005/orbit/internal/common"
)

// settle waits until a lifecycle or lock change has propagated through the
// controller and the overlay is up to date.
func (a *App) settle() {
	a.lc.Flush()
	a.ctrl.Flush()
	a.lock.Flush()
	a.ctrl.Flush()
}

// beforePrompt renders the lock overlay and runs its automatic challenge
// once per appearance.
func (a *App) beforePrompt(ctx context.Context) {
	if !a.ctrl.Overlay().Visible {
		return
	}
	if a.ctrl.AutoUnlock(ctx) {
		a.println("Unlocked")
		return
	}
	ov := a.ctrl.Overlay()
	if !ov.Visible {
		return
	}
	a.printf("Orbit is locked. %s (type 'unlock')\n", ov.Hint)
	if ov.Error != "" {
		a.println(ov.Error)
	}
}

func (a *App) Unlock(ctx context.Context) error {
	if !a.ctrl.Overlay().Visible {
		a.println("App is not locked")
		return nil
	}
	if a.ctrl.Unlock(ctx) {
		a.println("Unlocked")
	}
	return nil
}

func (a *App) Background(context.Context) error {
	a.lc.Set(lifecycle.Background)
	a.settle()
	a.println("App moved to background")
	return nil
}

func (a *App) Foreground(context.Context) error {
	a.lc.Set(lifecycle.Active)
	a.settle()
	return nil
}

// AppLock turns the app lock on or off. Turning it on asks for the device
// passcode first.
func (a *App) AppLock(ctx context.Context, args []string) error {
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		a.println("Usage: applock on|off")
		return nil
	}

	if args[0] == "off" {
		a.lock.SetEnabled(ctx, false)
		a.settle()
		a.println("App lock disabled")
		return nil
	}

	if !a.lock.Capability().Supported() {
		a.println("No device authentication is set up. Set a passcode first with 'passcode'.")
		return nil
	}
	if !a.lock.SetEnabled(ctx, true) {
		a.settle()
		msg := a.lock.LastError()
		if msg == "" {
			msg = "App lock was not enabled"
		}
		return errors.New(msg)
	}
	a.settle()
	a.println("App lock enabled")
	return nil
}

// Passcode enrolls the device passcode used by the app lock, or removes it
// with "passcode remove".
func (a *App) Passcode(ctx context.Context, args []string) error {
	if len(args) == 1 && args[0] == "remove" {
		if a.lock.Enabled() {
			a.lock.SetEnabled(ctx, false)
		}
		if err := a.passcode.Remove(ctx); err != nil {
			return err
		}
		a.lock.Recheck(ctx)
		a.settle()
		a.println("Passcode removed")
		return nil
	}
	if len(args) != 0 {
		a.println("Usage: passcode [remove]")
		return nil
	}

	first, err := getPassword(a.out, "New passcode: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(first)
	second, err := getPassword(a.out, "Repeat passcode: ")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(second)

	if string(first) != string(second) {
		return errors.New("passcodes do not match")
	}
	if err := a.passcode.Enroll(ctx, first); err != nil {
		if errors.Is(err, biometric.ErrPasscodeTooShort) {
			return errors.New("passcode is too short")
		}
		return err
	}
	a.lock.Recheck(ctx)
	a.settle()
	a.println("Passcode saved")
	return nil
}
