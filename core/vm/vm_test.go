package vm_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/republicprotocol/spdz/core/field"
	"github.com/republicprotocol/spdz/core/instruction"
	"github.com/republicprotocol/spdz/core/register"
	"github.com/republicprotocol/spdz/core/share"
	. "github.com/republicprotocol/spdz/core/vm"
)

type stubAction struct {
	openResult  field.Fp
	openErr     error
	inputResult field.Fp
	inputErr    error
	checkErr    error
	checked     []Opening
}

func (s *stubAction) Open(x field.Fp) (field.Fp, error) { return s.openResult, s.openErr }

func (s *stubAction) Input(ownerID int, offset *field.Fp) (field.Fp, error) {
	return s.inputResult, s.inputErr
}

func (s *stubAction) Check(openings []Opening) error {
	s.checked = openings
	return s.checkErr
}

type stubPreproc struct {
	triple    share.Triple
	tripleErr error
	rand      share.RandShare
	randErr   error
}

func (s *stubPreproc) NextTriple() (share.Triple, error) { return s.triple, s.tripleErr }

func (s *stubPreproc) NextRandShare(owner int) (share.RandShare, error) {
	return s.rand, s.randErr
}

var _ = Describe("VM instruction interpreter", func() {

	Context("when executing clear arithmetic", func() {
		It("CAdd should add two clear registers", func() {
			reg := register.New(4)
			reg.SetClear(0, field.FromInt64(2))
			reg.SetClear(1, field.FromInt64(3))
			v := New(0, field.Zero(), reg, &stubPreproc{})

			halted, err := v.Exec(instruction.CAdd{Dst: 2, A: 0, B: 1}, &stubAction{})
			Expect(err).To(BeNil())
			Expect(halted).To(BeFalse())

			got, err := reg.GetClear(2)
			Expect(err).To(BeNil())
			Expect(got.Equal(field.FromInt64(5))).To(BeTrue())
		})

		It("CMul should multiply two clear registers", func() {
			reg := register.New(4)
			reg.SetClear(0, field.FromInt64(6))
			reg.SetClear(1, field.FromInt64(7))
			v := New(0, field.Zero(), reg, &stubPreproc{})

			_, err := v.Exec(instruction.CMul{Dst: 2, A: 0, B: 1}, &stubAction{})
			Expect(err).To(BeNil())

			got, err := reg.GetClear(2)
			Expect(err).To(BeNil())
			Expect(got.Equal(field.FromInt64(42))).To(BeTrue())
		})
	})

	Context("when executing secret linear arithmetic", func() {
		It("SAdd should add two AuthShares componentwise without peer interaction", func() {
			reg := register.New(4)
			a := share.AuthShare{Share: field.FromInt64(2), MAC: field.FromInt64(20)}
			b := share.AuthShare{Share: field.FromInt64(3), MAC: field.FromInt64(30)}
			reg.SetSecret(0, a)
			reg.SetSecret(1, b)
			v := New(0, field.Zero(), reg, &stubPreproc{})

			_, err := v.Exec(instruction.SAdd{Dst: 2, A: 0, B: 1}, &stubAction{})
			Expect(err).To(BeNil())

			got, err := reg.GetSecret(2)
			Expect(err).To(BeNil())
			Expect(got.Share.Equal(field.FromInt64(5))).To(BeTrue())
			Expect(got.MAC.Equal(field.FromInt64(50))).To(BeTrue())
		})
	})

	Context("when reading an empty register slot", func() {
		It("should return an ExecError wrapping ErrEmptyRegister", func() {
			reg := register.New(4)
			v := New(0, field.Zero(), reg, &stubPreproc{})

			_, err := v.Exec(instruction.CAdd{Dst: 2, A: 0, B: 1}, &stubAction{})
			Expect(err).ToNot(BeNil())
			Expect(errors.Is(err, register.ErrEmptyRegister)).To(BeTrue())

			var execErr *ExecError
			Expect(errors.As(err, &execErr)).To(BeTrue())
		})
	})

	Context("when executing Triple", func() {
		It("should pull a triple from preprocessing into three secret registers", func() {
			reg := register.New(4)
			triple := share.Triple{
				A: share.AuthShare{Share: field.FromInt64(1), MAC: field.FromInt64(1)},
				B: share.AuthShare{Share: field.FromInt64(2), MAC: field.FromInt64(2)},
				C: share.AuthShare{Share: field.FromInt64(3), MAC: field.FromInt64(3)},
			}
			v := New(0, field.Zero(), reg, &stubPreproc{triple: triple})

			_, err := v.Exec(instruction.Triple{R0: 0, R1: 1, R2: 2}, &stubAction{})
			Expect(err).To(BeNil())

			a, _ := reg.GetSecret(0)
			Expect(a).To(Equal(triple.A))
		})
	})

	Context("when executing Open", func() {
		It("should store the peer-reconstructed value in the clear bank and log the opening", func() {
			reg := register.New(4)
			s := share.AuthShare{Share: field.FromInt64(5), MAC: field.FromInt64(50)}
			reg.SetSecret(0, s)
			v := New(0, field.Zero(), reg, &stubPreproc{})

			_, err := v.Exec(instruction.Open{Dst: 1, Src: 0}, &stubAction{openResult: field.FromInt64(9)})
			Expect(err).To(BeNil())

			got, err := reg.GetClear(1)
			Expect(err).To(BeNil())
			Expect(got.Equal(field.FromInt64(9))).To(BeTrue())
		})

		It("should propagate an Open failure", func() {
			reg := register.New(4)
			reg.SetSecret(0, share.AuthShare{})
			v := New(0, field.Zero(), reg, &stubPreproc{})

			boom := errors.New("boom")
			_, err := v.Exec(instruction.Open{Dst: 1, Src: 0}, &stubAction{openErr: boom})
			Expect(errors.Is(err, boom)).To(BeTrue())
		})
	})

	Context("when executing SOutput", func() {
		It("should run a Check over the opening log and append the output on success", func() {
			reg := register.New(4)
			s := share.AuthShare{Share: field.FromInt64(5), MAC: field.FromInt64(50)}
			reg.SetSecret(0, s)
			v := New(0, field.Zero(), reg, &stubPreproc{})

			act := &stubAction{openResult: field.FromInt64(9)}
			_, err := v.Exec(instruction.SOutput{K: 0}, act)
			Expect(err).To(BeNil())
			Expect(act.checked).To(HaveLen(1))
			Expect(v.Outputs()).To(HaveLen(1))
			Expect(v.Outputs()[0].Equal(field.FromInt64(9))).To(BeTrue())
		})

		It("should not append an output when the MAC check fails", func() {
			reg := register.New(4)
			reg.SetSecret(0, share.AuthShare{})
			v := New(0, field.Zero(), reg, &stubPreproc{})

			boom := errors.New("mac check failed")
			act := &stubAction{checkErr: boom}
			_, err := v.Exec(instruction.SOutput{K: 0}, act)
			Expect(errors.Is(err, boom)).To(BeTrue())
			Expect(v.Outputs()).To(HaveLen(0))
		})
	})

	Context("when executing Stop", func() {
		It("should halt and run a final Check if openings remain", func() {
			reg := register.New(4)
			reg.SetSecret(0, share.AuthShare{})
			v := New(0, field.Zero(), reg, &stubPreproc{})

			act := &stubAction{openResult: field.FromInt64(1)}
			_, err := v.Exec(instruction.Open{Dst: 1, Src: 0}, act)
			Expect(err).To(BeNil())

			halted, err := v.Exec(instruction.Stop{}, act)
			Expect(err).To(BeNil())
			Expect(halted).To(BeTrue())
			Expect(act.checked).To(HaveLen(1))
		})

		It("should halt without a Check when there are no pending openings", func() {
			reg := register.New(4)
			v := New(0, field.Zero(), reg, &stubPreproc{})

			act := &stubAction{}
			halted, err := v.Exec(instruction.Stop{}, act)
			Expect(err).To(BeNil())
			Expect(halted).To(BeTrue())
			Expect(act.checked).To(BeNil())
		})
	})
})
