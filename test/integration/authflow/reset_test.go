// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Emberhost Contributors

//go:build integration

package authflow_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention

	"github.com/emberhost/emberhost/internal/auth"
)

var _ = Describe("Password reset", func() {
	const password = "correct horse battery"

	var email string

	BeforeEach(func() {
		env.verifier.setAccept(true)
		email = uniqueEmail()
		register(email, password)
	})

	requestReset := func(email string) auth.Outcome {
		GinkgoHelper()
		out, err := env.flow.SendResetPasswordEmail(env.ctx, auth.ResetRequest{
			Email:          email,
			ChallengeToken: "challenge-ok",
			RemoteIP:       "203.0.113.1",
		})
		Expect(err).NotTo(HaveOccurred())
		return out
	}

	It("answers identically for known and unknown addresses", func() {
		known := requestReset(email)
		unknown := requestReset(uniqueEmail())

		Expect(known).To(Equal(unknown))
		Expect(known.Message).To(Equal(auth.ResetSentMessage))
	})

	It("sends no mail for an unknown address", func() {
		ghost := uniqueEmail()
		requestReset(ghost)

		Expect(env.mailer.kindsFor(ghost)).To(BeEmpty())
	})

	It("changes the password end to end", func() {
		requestReset(email)
		code := env.mailer.lastCode("reset", email)
		Expect(code).NotTo(BeEmpty())

		const newPassword = "an entirely new passphrase"
		out, err := env.flow.CompleteResetPassword(env.ctx, auth.CompleteResetRequest{
			Email:       email,
			Code:        code,
			NewPassword: newPassword,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(out.Message).To(Equal(auth.PasswordChangedMessage))

		_, err = env.flow.Login(env.ctx, auth.LoginRequest{
			Email:          email,
			Password:       password,
			ChallengeToken: "challenge-ok",
		})
		Expect(err).To(HaveOccurred())

		_, err = env.flow.Login(env.ctx, auth.LoginRequest{
			Email:          email,
			Password:       newPassword,
			ChallengeToken: "challenge-ok",
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("rejects a reset code on second use", func() {
		requestReset(email)
		code := env.mailer.lastCode("reset", email)

		complete := func() error {
			_, err := env.flow.CompleteResetPassword(env.ctx, auth.CompleteResetRequest{
				Email:       email,
				Code:        code,
				NewPassword: "an entirely new passphrase",
			})
			return err
		}

		Expect(complete()).To(Succeed())

		err := complete()
		fe, ok := auth.AsFlowError(err)
		Expect(ok).To(BeTrue())
		Expect(fe.Kind).To(Equal(auth.KindInvalidCode))
	})

	It("rejects an expired code", func() {
		account, err := env.accounts.GetByEmail(env.ctx, email)
		Expect(err).NotTo(HaveOccurred())

		code, hash, err := auth.GenerateCode()
		Expect(err).NotTo(HaveOccurred())
		expired, err := auth.NewOneTimeCode(account.ID, hash, time.Now().Add(-time.Minute))
		Expect(err).NotTo(HaveOccurred())
		Expect(env.codes.Create(env.ctx, auth.PurposePasswordReset, expired)).To(Succeed())

		_, err = env.flow.CompleteResetPassword(env.ctx, auth.CompleteResetRequest{
			Email:       email,
			Code:        code,
			NewPassword: "an entirely new passphrase",
		})
		fe, ok := auth.AsFlowError(err)
		Expect(ok).To(BeTrue())
		Expect(fe.Kind).To(Equal(auth.KindInvalidCode))
	})
})
