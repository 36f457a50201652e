package commitment_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/republicprotocol/spdz/core/commitment"
	"github.com/republicprotocol/spdz/core/field"
)

var _ = Describe("Hash-based commitment scheme", func() {

	Context("when verifying a genuine opening", func() {
		It("should accept", func() {
			v := field.Random()
			com, opening := Commit(v)
			Expect(Verify(opening, com)).To(BeNil())
		})
	})

	Context("when the opened value does not match the commitment", func() {
		It("should reject", func() {
			v := field.Random()
			com, opening := Commit(v)
			opening.V = field.Random()
			Expect(Verify(opening, com)).To(Equal(ErrUnacceptableCommitment))
		})
	})

	Context("when the opened salt does not match the commitment", func() {
		It("should reject", func() {
			v := field.Random()
			com, opening := Commit(v)
			opening.R[0] ^= 0xff
			Expect(Verify(opening, com)).To(Equal(ErrUnacceptableCommitment))
		})
	})

	Context("when committing to the same value twice", func() {
		It("should produce different commitments with overwhelming probability", func() {
			v := field.Random()
			com1, _ := Commit(v)
			com2, _ := Commit(v)
			Expect(com1).ToNot(Equal(com2))
		})
	})
})
