package validation_test

import (
	"testing"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	errors "github.com/frahmantamala/incubation-console/internal"
	"github.com/frahmantamala/incubation-console/internal/core/common/validation"
)

func TestValidation(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "Validation Suite")
}

func fields(err *errors.AppError) []string {
	details, ok := err.Details.(errors.ValidationErrors)
	gomega.Expect(ok).To(gomega.BeTrue())
	out := make([]string, len(details.Errors))
	for i, e := range details.Errors {
		out[i] = e.Field
	}
	return out
}

var _ = ginkgo.Describe("ValidationBuilder", func() {
	ginkgo.It("should pass a valid form", func() {
		v := validation.NewValidator()
		v.Field("name", "Alpha Labs").Required().MaxLength(100)
		v.Field("email", "ana@example.com").Required().Email()
		v.Field("website", "https://alpha.example.com").URL()
		v.Field("path", "/apps/one").Prefix("/")
		v.Field("adminState", 1).OneOf(0, 1)

		gomega.Expect(v.Validate()).To(gomega.BeNil())
	})

	ginkgo.It("should collect every failing field", func() {
		v := validation.NewValidator()
		v.Field("name", "  ").Required()
		v.Field("email", "not an email").Email()
		v.Field("website", "ftp://files").URL()
		v.Field("adminState", 3).OneOf(0, 1)

		err := v.Validate()
		gomega.Expect(err).ToNot(gomega.BeNil())
		gomega.Expect(err.Type).To(gomega.Equal(errors.ErrorTypeValidation))
		gomega.Expect(fields(err)).To(gomega.Equal([]string{"name", "email", "website", "adminState"}))
	})

	ginkgo.It("should leave empty optional values to Required", func() {
		v := validation.NewValidator()
		v.Field("email", "").Email()
		v.Field("website", "").URL()
		v.Field("path", "").Prefix("/")

		gomega.Expect(v.Validate()).To(gomega.BeNil())
	})

	ginkgo.It("should treat a nil pointer as missing", func() {
		var roleID *int
		v := validation.NewValidator()
		v.Field("roleId", roleID).Required()

		err := v.Validate()
		gomega.Expect(err).ToNot(gomega.BeNil())
		gomega.Expect(err.GetDetailedMessage()).To(gomega.ContainSubstring("roleId is required"))
	})
})
