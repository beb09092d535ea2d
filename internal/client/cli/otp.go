package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/client/services"
	"github.com/rameshsurya10/Quiz-Rework-sub001/internal/common"
)

// verifyOTP drives the one-time-code challenge interactively. Each typed
// line of digits replaces the previous cells; 'resend', 'retry', and
// 'cancel' map onto the challenge machine's recovery affordances.
func (a *App) verifyOTP(ctx context.Context, ch *services.OTPChallenge) error {
	ch.StartCountdown(ctx)
	defer ch.Cancel()

	log.Printf("A %d-digit code was sent to %s", services.OTPDigits, ch.Email())

	for {
		prompt := fmt.Sprintf("Enter code (%ds left), or 'resend'/'retry'/'cancel'", ch.Remaining())
		line, err := GetSimpleText(a.reader, prompt, os.Stdout)
		if err != nil {
			return err
		}

		switch strings.ToLower(line) {
		case "cancel":
			log.Printf("Verification cancelled")
			return nil

		case "resend":
			if err := ch.Resend(ctx); err != nil {
				log.Printf("Resend failed: %s", err.Error())
				continue
			}
			log.Printf("Code re-sent to %s", ch.Email())
			continue

		case "retry":
			_ = ch.Retry()
			continue
		}

		drainDigits(ch)
		if err := enterDigits(ch, line); err != nil {
			log.Printf("Invalid input: %s", err.Error())
			continue
		}

		res, err := ch.Submit(ctx)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrOTPIncomplete):
				log.Printf("Please enter all %d digits", services.OTPDigits)
			case errors.Is(err, common.ErrOTPExpired):
				log.Printf("Code expired, type 'resend' to get a new one")
			case errors.Is(err, common.ErrNetworkUnavailable):
				log.Printf("Could not reach the server; type 'retry' or 'resend'")
			default:
				log.Printf("Verification failed: %s", err.Error())
			}
			continue
		}

		a.route = res.Route
		log.Printf("Login successful, landing at %s", res.Route)
		return nil
	}
}

func enterDigits(ch *services.OTPChallenge, line string) error {
	for i := 0; i < len(line); i++ {
		if err := ch.EnterDigit(line[i]); err != nil {
			return err
		}
	}
	return nil
}

// drainDigits backspaces until every cell is empty. Two presses per cell
// is enough: one to clear it, one to step back.
func drainDigits(ch *services.OTPChallenge) {
	for i := 0; i < services.OTPDigits*2; i++ {
		if err := ch.Backspace(); err != nil {
			return
		}
	}
}
