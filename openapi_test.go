package main_test

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("OpenAPI Contract", func() {
	var doc *openapi3.T

	BeforeEach(func() {
		loader := openapi3.NewLoader()
		var err error
		doc, err = loader.LoadFromFile("api/openapi.yml")
		Expect(err).NotTo(HaveOccurred())
	})

	It("should be a valid OpenAPI 3 document", func() {
		Expect(doc.Validate(context.Background())).To(Succeed())
	})

	It("should document every portal page route", func() {
		for _, path := range []string{
			"/login", "/logout", "/me", "/dashboard",
			"/students", "/personnel", "/forms",
			"/users", "/settings/password", "/backup",
		} {
			Expect(doc.Paths.Find(path)).NotTo(BeNil(), "missing path %s", path)
		}
	})

	It("should declare the session cookie security scheme", func() {
		scheme := doc.Components.SecuritySchemes["sessionCookie"]
		Expect(scheme).NotTo(BeNil())
		Expect(scheme.Value.In).To(Equal("cookie"))
	})
})
