package preproc_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/republicprotocol/spdz/core/field"
	. "github.com/republicprotocol/spdz/core/preproc"
	"github.com/republicprotocol/spdz/core/share"
)

var _ = Describe("Preprocessing forwarding queues", func() {

	Context("TripleQueue", func() {
		It("should serve pushed triples in FIFO order", func() {
			q := NewTripleQueue(4)
			first := share.Triple{A: share.AuthShare{Share: field.FromInt64(1)}}
			second := share.Triple{A: share.AuthShare{Share: field.FromInt64(2)}}
			Expect(q.Push(first)).To(BeNil())
			Expect(q.Push(second)).To(BeNil())

			ctx := context.Background()
			got1, err := q.Pop(ctx)
			Expect(err).To(BeNil())
			Expect(got1).To(Equal(first))

			got2, err := q.Pop(ctx)
			Expect(err).To(BeNil())
			Expect(got2).To(Equal(second))
		})

		It("should reject pushes once full", func() {
			q := NewTripleQueue(1)
			Expect(q.Push(share.Triple{})).To(BeNil())
			Expect(q.Push(share.Triple{})).To(Equal(ErrQueueFull))
		})

		It("should time out popping an empty queue", func() {
			q := NewTripleQueue(1)
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			_, err := q.Pop(ctx)
			Expect(err).ToNot(BeNil())
		})
	})

	Context("RandShareQueue", func() {
		It("should serve each owner's bucket LIFO", func() {
			q := NewRandShareQueue(4)
			older := share.RandShare{PartyID: 1, Share: share.AuthShare{Share: field.FromInt64(1)}}
			newer := share.RandShare{PartyID: 1, Share: share.AuthShare{Share: field.FromInt64(2)}}
			Expect(q.Push(older)).To(BeNil())
			Expect(q.Push(newer)).To(BeNil())

			ctx := context.Background()
			got1, err := q.Pop(ctx, 1)
			Expect(err).To(BeNil())
			Expect(got1).To(Equal(newer))

			got2, err := q.Pop(ctx, 1)
			Expect(err).To(BeNil())
			Expect(got2).To(Equal(older))
		})

		It("should keep different owners' buckets independent", func() {
			q := NewRandShareQueue(4)
			a := share.RandShare{PartyID: 0, Share: share.AuthShare{Share: field.FromInt64(10)}}
			b := share.RandShare{PartyID: 1, Share: share.AuthShare{Share: field.FromInt64(20)}}
			Expect(q.Push(a)).To(BeNil())
			Expect(q.Push(b)).To(BeNil())

			ctx := context.Background()
			got, err := q.Pop(ctx, 0)
			Expect(err).To(BeNil())
			Expect(got).To(Equal(a))
		})
	})

	Context("Adapter", func() {
		It("should implement vm.Preproc against both queues", func() {
			triples := NewTripleQueue(1)
			rands := NewRandShareQueue(1)
			triple := share.Triple{A: share.AuthShare{Share: field.FromInt64(9)}}
			rs := share.RandShare{PartyID: 0, Share: share.AuthShare{Share: field.FromInt64(8)}}
			Expect(triples.Push(triple)).To(BeNil())
			Expect(rands.Push(rs)).To(BeNil())

			a := NewAdapter(triples, rands, time.Second)
			got, err := a.NextTriple()
			Expect(err).To(BeNil())
			Expect(got).To(Equal(triple))

			gotRS, err := a.NextRandShare(0)
			Expect(err).To(BeNil())
			Expect(gotRS).To(Equal(rs))
		})
	})
})
