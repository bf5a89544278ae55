package ai

import (
	"math/rand/v2"
	"strings"
)

// quoteLength is how many characters of the message a default reply may quote.
const quoteLength = 30

type replyClass int

const (
	classGreeting replyClass = iota
	classQuestion
	classThanks
	classBot
	classHelp
	classDefault
)

var (
	greetingWords = []string{"hello", "hi", "hey", "good morning", "good afternoon", "good evening"}
	thanksWords   = []string{"thank", "thanks", "appreciate"}
	botWords      = []string{"bot", "robot", "ai"}
	helpWords     = []string{"help", "assist", "support"}
)

// classify picks the reply class of a lowercased message. Classes are
// checked in priority order: greeting, question, thanks, bot, help.
func classify(lower string) replyClass {
	switch {
	case containsAny(lower, greetingWords):
		return classGreeting
	case strings.Contains(lower, "?"):
		return classQuestion
	case containsAny(lower, thanksWords):
		return classThanks
	case containsAny(lower, botWords):
		return classBot
	case containsAny(lower, helpWords):
		return classHelp
	default:
		return classDefault
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// Fallback produces canned replies when no AI provider answers.
type Fallback struct {
	intn func(n int) int
}

// NewFallback creates a Fallback that picks replies at random.
func NewFallback() *Fallback {
	return &Fallback{intn: rand.IntN}
}

// Reply returns a reply for message suited to the chat type.
func (f *Fallback) Reply(message string, group bool) string {
	lower := strings.ToLower(message)
	quote := lower
	if runes := []rune(quote); len(runes) > quoteLength {
		quote = string(runes[:quoteLength])
	}

	var pool []string
	if group {
		pool = groupReplies(classify(lower), quote)
	} else {
		pool = privateReplies(classify(lower), quote)
	}
	return pool[f.intn(len(pool))]
}

func groupReplies(class replyClass, quote string) []string {
	switch class {
	case classGreeting:
		return []string{
			"Hey everyone! How's it going?",
			"Hello there! Great to see some activity in the group!",
			"Hi! Hope everyone's having a good day!",
			"Greetings! What's the discussion about today?",
			"Hey! Good to see you all here!",
		}
	case classQuestion:
		return []string{
			"That's an interesting question! Anyone else have thoughts on this?",
			"Good question! I'd love to hear what others think too.",
			"Hmm, that's worth discussing. What do you all think?",
			"Interesting point! Does anyone have experience with this?",
			"Great question for the group! Let's see what everyone thinks.",
		}
	case classThanks:
		return []string{
			"You're welcome! Happy to help the group!",
			"No problem! That's what this community is for!",
			"Glad I could contribute to the discussion!",
			"Anytime! Love seeing helpful conversations here!",
			"You're very welcome! Keep the great discussions going!",
		}
	case classBot:
		return []string{
			"Yes, I'm your friendly group bot! Here to help keep conversations interesting!",
			"That's me! I'm here to assist and engage with the group!",
			"Correct! I'm an AI bot designed to make group chats more interactive!",
			"Indeed! I'm here to contribute to your group discussions!",
			"Yep! Your resident bot, ready to chat and help out!",
		}
	case classHelp:
		return []string{
			"I'm here to help! What can I assist the group with?",
			"Happy to help out! What do you need assistance with?",
			"Sure thing! How can I support the group today?",
			"Of course! I'm here to make things easier for everyone!",
			"Absolutely! What kind of help are you looking for?",
		}
	default:
		return []string{
			"Interesting point about '" + quote + "...' - what does everyone else think?",
			"That's a cool topic! Anyone else want to share their thoughts?",
			"Thanks for sharing! I find group discussions really engaging.",
			"Good point! This group always has such thoughtful conversations.",
			"I appreciate you bringing this up - it's great to see active discussions!",
			"That's worth discussing further! What are your experiences with this?",
			"Interesting perspective! I'd love to hear more viewpoints from the group.",
		}
	}
}

func privateReplies(class replyClass, quote string) []string {
	switch class {
	case classGreeting:
		return []string{
			"Hello! Nice to chat with you personally. How can I help?",
			"Hi there! Great to have a one-on-one conversation. What's on your mind?",
			"Hey! I'm all ears. What would you like to talk about?",
			"Good to see you! How has your day been going?",
			"Hello! I'm here and ready to chat. What's new with you?",
		}
	case classQuestion:
		return []string{
			"That's a thoughtful question about '" + quote + "...' Let me think about that!",
			"You've got me curious now! That's definitely something worth exploring.",
			"Great question! I find these kinds of topics really engaging.",
			"That's an interesting way to look at it. What made you think of that?",
			"I love questions like this! They really make you think, don't they?",
		}
	case classThanks:
		return []string{
			"You're absolutely welcome! I really enjoy our conversations.",
			"My pleasure! I'm always happy to chat with you.",
			"Don't mention it! These discussions are great.",
			"Anytime! I appreciate you taking the time to chat.",
			"You're very welcome! Feel free to reach out whenever you want to talk.",
		}
	case classBot:
		return []string{
			"Yes, I'm an AI bot, but I try to make our conversations feel natural and engaging!",
			"That's right! I'm here to be your personal chat companion whenever you need one.",
			"Indeed I am! But I like to think of myself as a friendly conversation partner.",
			"Correct! I'm designed to have meaningful conversations just like this one.",
			"Yes, but don't let that stop us from having great chats together!",
		}
	case classHelp:
		return []string{
			"I'd be delighted to help! What's on your mind?",
			"Absolutely! I'm here to assist however I can. What do you need?",
			"Of course! I love being helpful. How can I support you today?",
			"I'm all yours! What kind of assistance are you looking for?",
			"Happy to help! Just let me know what you'd like to discuss or work on.",
		}
	default:
		return []string{
			"That's really interesting what you said about '" + quote + "...' Tell me more!",
			"I find that fascinating! What's your experience been with that?",
			"You've got me thinking now. That's a really good point you make.",
			"I appreciate you sharing that with me. What led you to that conclusion?",
			"That's a unique perspective! I'd love to hear more of your thoughts on it.",
			"Thanks for bringing that up - it's given me something new to consider!",
			"I really enjoy these kinds of conversations with you. What else is on your mind?",
		}
	}
}
