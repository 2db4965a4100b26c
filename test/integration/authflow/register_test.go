// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

//go:build integration

package authflow_test

import (
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/emberhost/emberhost/internal/auth"
)

var _ = Describe("Registration", func() {
	BeforeEach(func() {
		env.verifier.setAccept(true)
	})

	It("creates an unverified account and starts a session", func() {
		email := uniqueEmail()
		out := register(email, "correct horse battery")

		Expect(out.RedirectTo).To(Equal(auth.AccountRedirect))
		Expect(out.SessionToken).NotTo(BeEmpty())

		account, err := env.accounts.GetByEmail(env.ctx, email)
		Expect(err).NotTo(HaveOccurred())
		Expect(account.State).To(Equal(auth.StateUnverified))

		session, err := env.flow.ValidateSession(env.ctx, out.SessionToken)
		Expect(err).NotTo(HaveOccurred())
		Expect(session.AccountID).To(Equal(account.ID))
	})

	It("sends the welcome mail before the verification mail", func() {
		email := uniqueEmail()
		register(email, "correct horse battery")

		Expect(env.mailer.kindsFor(email)).To(Equal([]string{"welcome", "verification"}))
		Expect(env.mailer.lastCode("verification", email)).NotTo(BeEmpty())
	})

	It("rejects a duplicate email", func() {
		email := uniqueEmail()
		register(email, "correct horse battery")

		_, err := env.flow.Register(env.ctx, auth.RegisterRequest{
			Email:          email,
			Password:       "another password entirely",
			ChallengeToken: "challenge-ok",
		})
		fe, ok := auth.AsFlowError(err)
		Expect(ok).To(BeTrue())
		Expect(fe.Kind).To(Equal(auth.KindAccountExists))
	})

	It("creates nothing when the challenge is rejected", func() {
		env.verifier.setAccept(false)
		email := uniqueEmail()

		_, err := env.flow.Register(env.ctx, auth.RegisterRequest{
			Email:          email,
			Password:       "correct horse battery",
			ChallengeToken: "challenge-bad",
		})
		fe, ok := auth.AsFlowError(err)
		Expect(ok).To(BeTrue())
		Expect(fe.Kind).To(Equal(auth.KindInvalidCaptcha))

		_, err = env.accounts.GetByEmail(env.ctx, email)
		Expect(err).To(MatchError(auth.ErrNotFound))
	})
})
