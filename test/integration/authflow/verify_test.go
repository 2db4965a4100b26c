// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

//go:build integration

package authflow_test

import (
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/emberhost/emberhost/internal/auth"
)

var _ = Describe("Email verification", func() {
	const password = "correct horse battery"

	var (
		email       string
		registerOut auth.Outcome
		emailedCode string
	)

	BeforeEach(func() {
		env.verifier.setAccept(true)
		email = uniqueEmail()
		registerOut = register(email, password)
		emailedCode = env.mailer.lastCode("verification", email)
		Expect(emailedCode).NotTo(BeEmpty())
	})

	accountID := func() auth.Account {
		GinkgoHelper()
		account, err := env.accounts.GetByEmail(env.ctx, email)
		Expect(err).NotTo(HaveOccurred())
		return *account
	}

	It("marks the account verified with the emailed code", func() {
		account := accountID()

		out, err := env.flow.VerifyEmail(env.ctx, account.ID, emailedCode, "authflow-suite", "203.0.113.1")
		Expect(err).NotTo(HaveOccurred())
		Expect(out.RedirectTo).To(Equal(auth.AccountRedirect))

		Expect(accountID().State).To(Equal(auth.StateVerified))
	})

	It("rejects the code on second use", func() {
		account := accountID()

		_, err := env.flow.VerifyEmail(env.ctx, account.ID, emailedCode, "", "")
		Expect(err).NotTo(HaveOccurred())

		_, err = env.flow.VerifyEmail(env.ctx, account.ID, emailedCode, "", "")
		fe, ok := auth.AsFlowError(err)
		Expect(ok).To(BeTrue())
		Expect(fe.Kind).To(Equal(auth.KindInvalidCode))
	})

	It("rejects a code issued to a different account", func() {
		otherEmail := uniqueEmail()
		register(otherEmail, password)
		otherCode := env.mailer.lastCode("verification", otherEmail)

		_, err := env.flow.VerifyEmail(env.ctx, accountID().ID, otherCode, "", "")
		fe, ok := auth.AsFlowError(err)
		Expect(ok).To(BeTrue())
		Expect(fe.Kind).To(Equal(auth.KindInvalidCode))
	})

	It("rejects a password-reset code", func() {
		_, err := env.flow.SendResetPasswordEmail(env.ctx, auth.ResetRequest{
			Email:          email,
			ChallengeToken: "challenge-ok",
		})
		Expect(err).NotTo(HaveOccurred())
		resetCode := env.mailer.lastCode("reset", email)
		Expect(resetCode).NotTo(BeEmpty())

		_, err = env.flow.VerifyEmail(env.ctx, accountID().ID, resetCode, "", "")
		fe, ok := auth.AsFlowError(err)
		Expect(ok).To(BeTrue())
		Expect(fe.Kind).To(Equal(auth.KindInvalidCode))
	})

	It("rotates sessions on verification", func() {
		account := accountID()

		out, err := env.flow.VerifyEmail(env.ctx, account.ID, emailedCode, "", "")
		Expect(err).NotTo(HaveOccurred())
		Expect(out.SessionToken).NotTo(BeEmpty())
		Expect(out.SessionToken).NotTo(Equal(registerOut.SessionToken))

		_, err = env.flow.ValidateSession(env.ctx, registerOut.SessionToken)
		Expect(err).To(HaveOccurred())

		session, err := env.flow.ValidateSession(env.ctx, out.SessionToken)
		Expect(err).NotTo(HaveOccurred())
		Expect(session.AccountID).To(Equal(account.ID))
	})
})
