package bot

import (
	"fmt"
	"regexp"
)

// Category names the matcher keys side effects on.
const (
	categoryGreeting     = "greeting"
	categoryNameInquiry  = "name_inquiry"
	categoryHowAreYou    = "how_are_you"
	categoryFeelingsPos  = "feelings_positive"
	categoryFeelingsNeg  = "feelings_negative"
	categoryQuestions    = "questions_general"
	categoryCompliments  = "compliments"
	categoryGoodbye      = "goodbye"
	categoryWeather      = "weather"
	categoryTime         = "time"
	categoryIdentity     = "identity_inquiry"
	categoryCapabilities = "capabilities_inquiry"
	categoryBoredom      = "boredom"
	categoryHobbies      = "hobbies_interests"
	categoryFeedback     = "feedback"
)

// Placeholder tokens a template may carry. Which ones are legal depends on
// the category: only the category that extracts a value may reference it.
const (
	placeholderName     = "name"
	placeholderEmotion  = "emotion"
	placeholderInterest = "interest"
	placeholderTime     = "time"
)

var allowedPlaceholders = map[string]map[string]struct{}{
	categoryNameInquiry: {placeholderName: {}},
	categoryFeelingsPos: {placeholderEmotion: {}},
	categoryFeelingsNeg: {placeholderEmotion: {}},
	categoryHobbies:     {placeholderInterest: {}},
	categoryTime:        {placeholderTime: {}},
}

var placeholderPattern = regexp.MustCompile(`\{(\w+)\}`)

// Template is a single canned response. Plain templates carry no
// placeholders; templated ones list the placeholders that must be filled
// before the text is returned to a user.
type Template struct {
	Text         string
	Placeholders []string
}

func (t Template) Has(placeholder string) bool {
	for _, item := range t.Placeholders {
		if item == placeholder {
			return true
		}
	}
	return false
}

// CategorySpec is the raw, declarative form of one pattern category.
type CategorySpec struct {
	Name      string
	Patterns  []string
	Responses []string
}

// Category is a compiled pattern category. Pattern order within a category
// and category order within the table are both fixed: matching is
// first-match, never best-match.
type Category struct {
	Name      string
	Patterns  []*regexp.Regexp
	Responses []Template
}

// PatternTable is the immutable, process-wide category table.
type PatternTable struct {
	categories []Category
}

// Compile builds a PatternTable from specs, compiling every pattern and
// validating every template placeholder. A placeholder a category cannot
// fill is a load-time error, not a runtime one.
func Compile(specs []CategorySpec) (*PatternTable, error) {
	table := &PatternTable{categories: make([]Category, 0, len(specs))}
	for _, spec := range specs {
		if spec.Name == "" {
			return nil, fmt.Errorf("pattern category with empty name")
		}
		if len(spec.Patterns) == 0 || len(spec.Responses) == 0 {
			return nil, fmt.Errorf("pattern category %q needs at least one pattern and one response", spec.Name)
		}
		category := Category{
			Name:      spec.Name,
			Patterns:  make([]*regexp.Regexp, 0, len(spec.Patterns)),
			Responses: make([]Template, 0, len(spec.Responses)),
		}
		for _, raw := range spec.Patterns {
			compiled, err := regexp.Compile(raw)
			if err != nil {
				return nil, fmt.Errorf("pattern category %q: compile %q: %w", spec.Name, raw, err)
			}
			category.Patterns = append(category.Patterns, compiled)
		}
		allowed := allowedPlaceholders[spec.Name]
		for _, text := range spec.Responses {
			template := Template{Text: text}
			for _, group := range placeholderPattern.FindAllStringSubmatch(text, -1) {
				placeholder := group[1]
				if _, ok := allowed[placeholder]; !ok {
					return nil, fmt.Errorf(
						"pattern category %q: response %q uses placeholder {%s} the category cannot fill",
						spec.Name, text, placeholder,
					)
				}
				template.Placeholders = append(template.Placeholders, placeholder)
			}
			category.Responses = append(category.Responses, template)
		}
		table.categories = append(table.categories, category)
	}
	return table, nil
}

// DefaultTable compiles the built-in category table. The category order is
// load-bearing: name_inquiry must run before the feelings categories so
// "i'm alex" binds as an introduction, and feelings text reaches its own
// category only through the "i feel ..." forms.
func DefaultTable() (*PatternTable, error) {
	return Compile(defaultCategorySpecs())
}

func defaultCategorySpecs() []CategorySpec {
	return []CategorySpec{
		{
			Name: categoryGreeting,
			Patterns: []string{
				`\b(hello|hi|hey|good morning|good afternoon|good evening|greetings|howdy)\b`,
				`\b(what's up|whats up|sup)\b`,
				`\b(nice to meet you)\b`,
			},
			Responses: []string{
				"Hello! I'm excited to chat with you today. What's on your mind?",
				"Hi there! How are you doing today?",
				"Hey! Great to see you. What would you like to talk about?",
				"Hello! I'm here and ready to help. What brings you here today?",
				"Greetings! I'm your autonomous assistant. How can I make your day better?",
				"It's a pleasure to connect with you!",
				"Hi! So glad you stopped by. What's up?",
			},
		},
		{
			Name: categoryNameInquiry,
			Patterns: []string{
				`my name is (\w+)`,
				`i'm (\w+)`,
				`call me (\w+)`,
				`i am (\w+)`,
				`you can call me (\w+)`,
			},
			Responses: []string{
				"Nice to meet you, {name}! I'll remember that. How can I help you today?",
				"Great to know you, {name}! Thanks for introducing yourself.",
				"Hello {name}! It's wonderful to put a name to our conversation.",
				"Perfect, {name}! I'm glad we're getting acquainted. What's on your mind?",
				"Ah, {name}! A pleasure to make your acquaintance. What shall we discuss?",
			},
		},
		{
			Name: categoryHowAreYou,
			Patterns: []string{
				`\bhow are you\b`,
				`\bhow do you feel\b`,
				`\bhow's it going\b`,
				`\bhow have you been\b`,
				`\byou doing good\b`,
			},
			Responses: []string{
				"I'm doing great, thanks for asking! I'm always excited to learn and chat. How are you feeling today?",
				"I'm functioning well and ready to help! What's going well in your life?",
				"I'm doing wonderfully! Every conversation teaches me something new. How about you?",
				"I'm in excellent spirits! Ready to dive into whatever interests you.",
				"As an AI, I don't 'feel' in the human sense, but I'm operating perfectly! And you?",
				"I'm here, ready to assist! How are things with you today?",
			},
		},
		{
			Name: categoryFeelingsPos,
			Patterns: []string{
				`\bi feel (happy|excited|great|amazing|wonderful|fantastic|good|joy|cheerful|optimistic|awesome|terrific|blessed)\b`,
				`\bi'm (happy|excited|great|amazing|wonderful|fantastic|good|joyful|cheerful|optimistic|awesome|terrific|blessed)\b`,
				`\bthings are (great|good|going well)\b`,
				`\b(i'm doing great|i'm doing good)\b`,
			},
			Responses: []string{
				"That's wonderful to hear! I love that you're feeling {emotion}. What's been making you feel this way?",
				"How fantastic that you're feeling {emotion}! Would you like to share what's going so well?",
				"I'm so glad you're in such a {emotion} mood! What's been the highlight of your day?",
				"That's absolutely lovely! What's contributing to this positive energy?",
				"It's great to hear you're feeling {emotion}! Tell me more about it.",
			},
		},
		{
			Name: categoryFeelingsNeg,
			Patterns: []string{
				`\bi feel (sad|angry|worried|anxious|terrible|awful|down|depressed|stressed|bad|frustrated|tired|lonely|upset)\b`,
				`\bi'm (sad|angry|worried|anxious|terrible|awful|down|depressed|stressed|bad|frustrated|tired|lonely|upset)\b`,
				`\bthings are (bad|not going well)\b`,
				`\b(i'm not doing well|i'm doing bad)\b`,
			},
			Responses: []string{
				"I hear that you're feeling {emotion}. That sounds difficult. Would you like to talk about what's causing that?",
				"Thanks for sharing that you feel {emotion}. I'm here to listen. What's been weighing on you?",
				"It takes courage to express feeling {emotion}. What's been going on that's making you feel this way?",
				"I'm sorry you're going through {emotion} feelings. Sometimes talking helps - what's on your mind?",
				"I'm sorry to hear that. Please tell me more, I'm here to support you.",
				"It sounds like you're having a tough time. Is there anything I can do to help, even just by listening?",
			},
		},
		{
			Name: categoryQuestions,
			Patterns: []string{
				`\bwhat is\b`,
				`\bhow do\b`,
				`\bwhy do\b`,
				`\bcan you\b`,
				`\bwould you\b`,
				`\bdo you know\b`,
				`\bwhat are\b`,
				`\bhow can i\b`,
				`\btell me about\b`,
			},
			Responses: []string{
				"That's a great question! Let me think about that. What's your take on it?",
				"Interesting question! I'd love to explore that with you. What made you curious about this?",
				"That's something worth discussing! What do you already know about this topic?",
				"Good question! I enjoy intellectual discussions. What's your perspective?",
				"I can certainly try to help with that. What specifically are you trying to understand?",
				"That's a common query! What kind of answer are you hoping for?",
			},
		},
		{
			Name: categoryCompliments,
			Patterns: []string{
				`\byou're (great|good|helpful|smart|nice|awesome|amazing|wonderful|clever|intelligent)\b`,
				`\bthank you\b`,
				`\bthanks\b`,
				`\bi appreciate (that|it|your help)\b`,
				`\byou help (me|a lot)\b`,
				`\byou're the best\b`,
				`\bthat was helpful\b`,
			},
			Responses: []string{
				"Thank you so much! That really means a lot to me. I enjoy our conversation too!",
				"I appreciate that! I'm glad I could be helpful. Is there anything else you'd like to chat about?",
				"You're very kind! I'm here whenever you need someone to talk to.",
				"That's so thoughtful of you to say! It makes me happy to be useful.",
				"It's my pleasure! I'm glad I could assist.",
				"You're welcome! I'm always happy to help.",
			},
		},
		{
			Name: categoryGoodbye,
			Patterns: []string{
				`\b(bye|goodbye|see you|talk to you later|gtg|got to go|farewell|take care)\b`,
				`\bi have to go\b`,
				`\bgotta run\b`,
				`\bspeak to you soon\b`,
				`\bcatch you later\b`,
			},
			Responses: []string{
				"Goodbye! It was really nice chatting with you. Come back anytime!",
				"See you later! I enjoyed our conversation. Take care!",
				"Bye! Thanks for the great chat. I'll be here when you want to talk again!",
				"Farewell! It's been a pleasure. Hope to see you again soon!",
				"Until next time! Stay well.",
				"Talk to you soon!",
			},
		},
		{
			Name: categoryWeather,
			Patterns: []string{
				`\bweather\b`,
				`\brain\b`,
				`\bsunny\b`,
				`\bcloudy\b`,
				`\bstorm\b`,
			},
			Responses: []string{
				"I don't have access to current weather data, but I'd love to hear about the weather where you are! How's it looking outside?",
				"Weather can really affect our mood! What's the weather like in your area today?",
				"I wish I could check the weather for you! Are you planning any outdoor activities?",
			},
		},
		{
			Name: categoryTime,
			Patterns: []string{
				`\bwhat time\b`,
				`\bcurrent time\b`,
				`\btime is it\b`,
			},
			Responses: []string{
				"According to my server, it's currently {time}. What time zone are you in?",
				"Time flies when we're having good conversations! What are you up to today?",
				"My clock shows {time} - but time zones can be tricky! How's your day going?",
			},
		},
		{
			Name: categoryIdentity,
			Patterns: []string{
				`\bwho are you\b`,
				`\bwhat are you\b`,
				`\byour name\b`,
				`\bwhat is your name\b`,
			},
			Responses: []string{
				"I am Maximas, your autonomous chatbot assistant. I'm here to chat and help you explore ideas!",
				"You can call me Maximas. I'm an AI designed to have engaging conversations.",
				"I'm Maximas, an AI. It's nice to connect with you!",
			},
		},
		{
			Name: categoryCapabilities,
			Patterns: []string{
				`\bwhat can you do\b`,
				`\bcan you help me\b`,
				`\bwhat is your purpose\b`,
			},
			Responses: []string{
				"I can chat about a wide range of topics, learn from our conversations, remember your context, and provide thoughtful responses. How can I assist you today?",
				"My purpose is to engage in meaningful conversation, learn from our interactions, and be a helpful, autonomous assistant. What do you need help with?",
				"I can discuss various subjects, provide information I've been trained on, and adapt to our ongoing dialogue. Feel free to ask me anything!",
			},
		},
		{
			Name: categoryBoredom,
			Patterns: []string{
				`\bi'm bored\b`,
				`\bnothing to do\b`,
				`\bwhat should i do\b`,
				`\bentertain me\b`,
			},
			Responses: []string{
				"Oh no, boredom! How about we discuss a new topic? Is there anything you've been curious about lately?",
				"Boredom is a chance for new adventures! What's something you've always wanted to learn or try?",
				"Let's beat that boredom! I can tell you a fun fact, or we could brainstorm some ideas. What sounds good?",
				"If you're bored, maybe we can explore one of your interests? Or I could suggest a topic like [science], [history], or [art]?",
			},
		},
		{
			Name: categoryHobbies,
			Patterns: []string{
				`\bmy hobby is (.+?)\b`,
				`\bi like to (.+?)\b`,
				`\bi enjoy (.+?)\b`,
				`\bi'm interested in (.+?)\b`,
				`\bdo you like (.+?)\b`,
			},
			Responses: []string{
				"That's fascinating! So, you enjoy {interest}. Can you tell me more about what makes it so engaging for you?",
				"It sounds like you're passionate about {interest}! How did you get into that?",
				"I find {interest} to be a very interesting topic. What's a recent experience you've had with it?",
				"While I don't 'like' things in the human sense, I find learning about {interest} quite valuable! What else do you enjoy?",
			},
		},
		{
			Name: categoryFeedback,
			Patterns: []string{
				`\b(you could improve|i have a suggestion|feedback for you)\b`,
				`\b(you should|you need to) (.+?)\b`,
			},
			Responses: []string{
				"Thank you for your feedback! I'm always learning and looking to improve. What specifically is on your mind?",
				"I appreciate you taking the time to give me a suggestion. Please tell me more about it.",
				"Constructive criticism is very valuable! What are your thoughts on how I could do better?",
			},
		},
	}
}
