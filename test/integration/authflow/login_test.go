// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

//go:build integration

package authflow_test

import (
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/emberhost/emberhost/internal/auth"
)

var _ = Describe("Login", func() {
	const password = "correct horse battery"

	var email string

	BeforeEach(func() {
		env.verifier.setAccept(true)
		email = uniqueEmail()
		register(email, password)
	})

	login := func(email, password string) (auth.Outcome, error) {
		return env.flow.Login(env.ctx, auth.LoginRequest{
			Email:          email,
			Password:       password,
			ChallengeToken: "challenge-ok",
			RemoteIP:       "203.0.113.1",
			UserAgent:      "authflow-suite",
		})
	}

	It("starts a session for valid credentials", func() {
		out, err := login(email, password)
		Expect(err).NotTo(HaveOccurred())
		Expect(out.RedirectTo).To(Equal(auth.AccountRedirect))

		session, err := env.flow.ValidateSession(env.ctx, out.SessionToken)
		Expect(err).NotTo(HaveOccurred())
		Expect(session.ID).NotTo(BeZero())
	})

	It("returns the same message for wrong password and unknown email", func() {
		_, wrongPassErr := login(email, "not the password at all")
		_, unknownErr := login(uniqueEmail(), password)

		wrongFe, ok := auth.AsFlowError(wrongPassErr)
		Expect(ok).To(BeTrue())
		unknownFe, ok := auth.AsFlowError(unknownErr)
		Expect(ok).To(BeTrue())
		Expect(wrongFe.UserMessage()).To(Equal(unknownFe.UserMessage()))
	})

	It("records failed attempts", func() {
		_, err := login(email, "not the password at all")
		Expect(err).To(HaveOccurred())

		account, err := env.accounts.GetByEmail(env.ctx, email)
		Expect(err).NotTo(HaveOccurred())
		Expect(account.FailedAttempts).To(Equal(1))
	})

	It("locks the account after repeated failures, even for the right password", func() {
		for range auth.LockoutThreshold {
			_, err := login(email, "not the password at all")
			Expect(err).To(HaveOccurred())
		}

		_, err := login(email, password)
		fe, ok := auth.AsFlowError(err)
		Expect(ok).To(BeTrue())
		Expect(fe.Kind).To(Equal(auth.KindAccountLocked))
	})

	It("resets the failure count on a successful login", func() {
		_, err := login(email, "not the password at all")
		Expect(err).To(HaveOccurred())

		_, err = login(email, password)
		Expect(err).NotTo(HaveOccurred())

		account, err := env.accounts.GetByEmail(env.ctx, email)
		Expect(err).NotTo(HaveOccurred())
		Expect(account.FailedAttempts).To(BeZero())
	})
})
