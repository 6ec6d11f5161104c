//go:build acceptance

package acceptance

import (
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("API key", func() {
	It("is issued for a valid user", func() {
		resp, err := pf.GetAPIKey(ctx, settings.Email, settings.Password)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.JSON).To(HaveKey("key"))
	})

	DescribeTable("is refused for bad credentials",
		func(email, password func() string) {
			resp, err := pf.GetAPIKey(ctx, email(), password())
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusForbidden))
			Expect(resp.JSON).NotTo(HaveKey("key"))
			Expect(resp.Raw).NotTo(ContainSubstring(`"key"`))
		},
		Entry("invalid email", literal("sunshine@yandex"), validPassword),
		Entry("invalid password", validEmail, literal("sdokj13kj5ok28")),
		Entry("empty email", literal(""), validPassword),
		Entry("empty password", validEmail, literal("")),
		Entry("empty email and password", literal(""), literal("")),
	)
})

// Table entries are built before BeforeSuite loads settings, so the valid
// credentials are resolved lazily.
func validEmail() string    { return settings.Email }
func validPassword() string { return settings.Password }

func literal(s string) func() string {
	return func() string { return s }
}
