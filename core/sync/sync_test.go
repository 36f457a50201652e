package sync_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/republicprotocol/spdz/core/message"
	. "github.com/republicprotocol/spdz/core/sync"
)

var _ = Describe("Synchronizer", func() {

	Context("when a single party replies Ok then Abort", func() {
		It("should broadcast Start, Next, Next, then Abort", func() {
			toParty := make(chan message.SyncMsg, 5)
			fromParty := make(chan message.SyncReply, 5)
			s := New(Config{
				Send: []chan<- message.SyncMsg{toParty},
				Recv: []<-chan message.SyncReply{fromParty},
			})

			done := make(chan error, 1)
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			go func() { done <- s.Run(ctx) }()

			Expect(<-toParty).To(Equal(message.Start))
			Expect(<-toParty).To(Equal(message.Next))

			fromParty <- message.Ok
			Expect(<-toParty).To(Equal(message.Next))

			fromParty <- message.ReplyAbort
			Expect(<-toParty).To(Equal(message.Abort))

			Expect(<-done).ToNot(BeNil())
		})
	})

	Context("when every party reports Done on the first step", func() {
		It("should return without broadcasting Abort", func() {
			n := 3
			toParties := make([]chan message.SyncMsg, n)
			send := make([]chan<- message.SyncMsg, n)
			fromParties := make([]chan message.SyncReply, n)
			recv := make([]<-chan message.SyncReply, n)
			for i := 0; i < n; i++ {
				toParties[i] = make(chan message.SyncMsg, 5)
				send[i] = toParties[i]
				fromParties[i] = make(chan message.SyncReply, 5)
				recv[i] = fromParties[i]
			}
			s := New(Config{Send: send, Recv: recv})

			done := make(chan error, 1)
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			go func() { done <- s.Run(ctx) }()

			for i := 0; i < n; i++ {
				Expect(<-toParties[i]).To(Equal(message.Start))
			}
			for i := 0; i < n; i++ {
				Expect(<-toParties[i]).To(Equal(message.Next))
			}
			for i := 0; i < n; i++ {
				fromParties[i] <- message.Done
			}

			Expect(<-done).To(BeNil())
		})
	})
})
