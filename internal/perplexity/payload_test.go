package perplexity_test

import (
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/tom-doerr/perplexity-search/internal/chat"
	"github.com/tom-doerr/perplexity-search/internal/perplexity"
)

var _ = Describe("BuildPayload", func() {
	Context("without conversation context", func() {
		It("produces exactly [system, user(query)]", func() {
			payload, err := perplexity.BuildPayload("test query", "test-model", true, false, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(payload.Model).To(Equal("test-model"))
			Expect(payload.Stream).To(BeTrue())
			Expect(payload.ShowCitations).To(BeFalse())
			Expect(payload.Messages).To(HaveLen(2))
			Expect(payload.Messages[0].Role).To(Equal(chat.RoleSystem))
			Expect(payload.Messages[0].Content).To(ContainSubstring("technical assistant"))
			Expect(payload.Messages[1].Role).To(Equal(chat.RoleUser))
			Expect(payload.Messages[1].Content).To(Equal("test query"))
		})
	})

	Context("with conversation context", func() {
		It("inserts history between the system message and the new query", func() {
			context := []chat.Message{
				{Role: chat.RoleUser, Content: "previous user message"},
				{Role: chat.RoleAssistant, Content: "previous assistant message"},
			}
			payload, err := perplexity.BuildPayload("new query", "test-model", false, true, context)
			Expect(err).NotTo(HaveOccurred())

			Expect(payload.Messages).To(HaveLen(4))
			Expect(payload.Messages[0].Role).To(Equal(chat.RoleSystem))
			Expect(payload.Messages[1].Content).To(Equal("previous user message"))
			Expect(payload.Messages[2].Content).To(Equal("previous assistant message"))
			Expect(payload.Messages[3].Role).To(Equal(chat.RoleUser))
			Expect(payload.Messages[3].Content).To(Equal("new query"))
		})

		It("ends with a single user message equal to the query and alternates elsewhere", func() {
			context := []chat.Message{
				{Role: chat.RoleUser, Content: "q1"},
				{Role: chat.RoleAssistant, Content: "a1"},
				{Role: chat.RoleUser, Content: "q2"},
				{Role: chat.RoleAssistant, Content: "a2"},
			}
			payload, err := perplexity.BuildPayload("q3", "m", true, false, context)
			Expect(err).NotTo(HaveOccurred())

			last := payload.Messages[len(payload.Messages)-1]
			Expect(last.Role).To(Equal(chat.RoleUser))
			Expect(last.Content).To(Equal("q3"))
			Expect(chat.ValidateMessages(payload.Messages)).To(Succeed())
		})

		It("keeps a caller-supplied system message instead of adding its own", func() {
			context := []chat.Message{
				{Role: chat.RoleSystem, Content: "answer in French"},
				{Role: chat.RoleUser, Content: "q"},
				{Role: chat.RoleAssistant, Content: "a"},
			}
			payload, err := perplexity.BuildPayload("q2", "m", true, false, context)
			Expect(err).NotTo(HaveOccurred())

			Expect(payload.Messages[0].Content).To(Equal("answer in French"))
			systemCount := 0
			for _, m := range payload.Messages {
				if m.Role == chat.RoleSystem {
					systemCount++
				}
			}
			Expect(systemCount).To(Equal(1))
		})
	})

	Context("with malformed context", func() {
		It("fails fast on adjacent same-role messages", func() {
			context := []chat.Message{
				{Role: chat.RoleUser, Content: "q1"},
				{Role: chat.RoleUser, Content: "q2"},
				{Role: chat.RoleAssistant, Content: "a"},
			}
			_, err := perplexity.BuildPayload("q", "m", true, false, context)
			var invalid *chat.InvalidContextError
			Expect(errors.As(err, &invalid)).To(BeTrue())
		})

		It("rejects a history ending on a user turn", func() {
			context := []chat.Message{
				{Role: chat.RoleUser, Content: "q1"},
				{Role: chat.RoleAssistant, Content: "a1"},
				{Role: chat.RoleUser, Content: "dangling"},
			}
			_, err := perplexity.BuildPayload("q", "m", true, false, context)
			var invalid *chat.InvalidContextError
			Expect(errors.As(err, &invalid)).To(BeTrue())
		})
	})

	It("serializes with the provider's field names", func() {
		payload, err := perplexity.BuildPayload("q", "test-model", true, true, nil)
		Expect(err).NotTo(HaveOccurred())

		data, err := json.Marshal(payload)
		Expect(err).NotTo(HaveOccurred())

		var wire map[string]any
		Expect(json.Unmarshal(data, &wire)).To(Succeed())
		Expect(wire).To(HaveKeyWithValue("model", "test-model"))
		Expect(wire).To(HaveKeyWithValue("stream", true))
		Expect(wire).To(HaveKeyWithValue("show_citations", true))
		Expect(wire).To(HaveKey("messages"))
	})
})
