package records_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/atokschool/archiving-portal/internal/records"
)

var _ = Describe("Paginate", func() {
	It("should split 45 records into 3 pages of 20", func() {
		p := records.Paginate(45, 20, 1)
		Expect(p.TotalPages).To(Equal(3))
		Expect(p.CurrentPage).To(Equal(1))
		Expect(p.Offset).To(Equal(0))
	})

	It("should compute the offset from the current page", func() {
		p := records.Paginate(45, 20, 2)
		Expect(p.CurrentPage).To(Equal(2))
		Expect(p.Offset).To(Equal(20))
	})

	It("should clamp a page past the end to the last page", func() {
		p := records.Paginate(45, 20, 99)
		Expect(p.CurrentPage).To(Equal(3))
		Expect(p.Offset).To(Equal(40))
	})

	It("should clamp page zero and negatives to the first page", func() {
		Expect(records.Paginate(45, 20, 0).CurrentPage).To(Equal(1))
		Expect(records.Paginate(45, 20, -5).CurrentPage).To(Equal(1))
	})

	It("should stay on page 1 with zero records", func() {
		p := records.Paginate(0, 20, 3)
		Expect(p.TotalPages).To(Equal(0))
		Expect(p.CurrentPage).To(Equal(1))
		Expect(p.Offset).To(Equal(0))
	})

	It("should count a partial final page", func() {
		Expect(records.Paginate(41, 20, 1).TotalPages).To(Equal(3))
		Expect(records.Paginate(40, 20, 1).TotalPages).To(Equal(2))
	})

	It("should fall back to the default page size", func() {
		p := records.Paginate(10, 0, 1)
		Expect(p.PerPage).To(Equal(records.DefaultPerPage))
	})
})
