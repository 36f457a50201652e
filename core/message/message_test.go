package message_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/republicprotocol/spdz/core/field"
	. "github.com/republicprotocol/spdz/core/message"
)

var _ = Describe("Broadcast and Gather", func() {

	Context("when every peer is listening", func() {
		It("should deliver a broadcast to every channel", func() {
			n := 3
			chans := make([]chan field.Fp, n)
			send := make([]chan<- field.Fp, n)
			recv := make([]<-chan field.Fp, n)
			for i := range chans {
				chans[i] = make(chan field.Fp, 1)
				send[i] = chans[i]
				recv[i] = chans[i]
			}

			v := field.FromInt64(7)
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			Expect(Broadcast(ctx, send, v)).To(BeNil())

			got, err := Gather(ctx, recv)
			Expect(err).To(BeNil())
			Expect(got).To(HaveLen(n))
			for _, g := range got {
				Expect(g.Equal(v)).To(BeTrue())
			}
		})
	})

	Context("when a peer never sends", func() {
		It("Gather should time out", func() {
			chans := make([]chan field.Fp, 1)
			chans[0] = make(chan field.Fp)
			recv := []<-chan field.Fp{chans[0]}

			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			_, err := Gather(ctx, recv)
			Expect(err).ToNot(BeNil())
		})
	})

	Context("when a peer never receives from a full unbuffered send", func() {
		It("Broadcast should time out", func() {
			chans := make([]chan field.Fp, 1)
			chans[0] = make(chan field.Fp)
			send := []chan<- field.Fp{chans[0]}

			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()
			err := Broadcast(ctx, send, field.FromInt64(1))
			Expect(err).ToNot(BeNil())
		})
	})

	Context("when unwrapping a PartyMsg of the wrong kind", func() {
		It("AsElem should report a protocol error for a commitment message", func() {
			m := ComMsg([32]byte{})
			_, err := m.AsElem()
			Expect(err).ToNot(BeNil())
		})
	})
})
