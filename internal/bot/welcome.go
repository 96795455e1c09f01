package bot

var welcomeMessages = []string{
	"Welcome to Nexora! We're thrilled to have you here! 🎉🔥",
	"Welcome to Nexora! Let’s ignite your journey! ✨🚀",
	"Welcome to Nexora! Ready to blaze a trail with us? 🌟💥",
	"Welcome to Nexora! Your adventure starts now! 🎊⚡",
	"Welcome to Nexora! We’re so excited to see you! 🥳🌈",
	"Welcome to Nexora! Let’s make some magic together! 🪄✨",
	"Welcome to Nexora! The party just got started! 🎈🎁",
	"Welcome to Nexora! Get ready for an amazing ride! 🚀🌟",
	"Welcome to Nexora! We’ve been waiting for you! 💖🎉",
	"Welcome to Nexora! Let’s set the server on fire! 🔥⚡",
	"Welcome to Nexora! Your journey begins here! 🌍✨",
	"Welcome to Nexora! We’re so glad you’re here! 🥰🎊",
	"Welcome to Nexora! Ready to shine bright? 🌟💡",
	"Welcome to Nexora! Let’s make things happen! 💪🔥",
	"Welcome to Nexora! A warm welcome to you! ☀️🎉",
	"Welcome to Nexora! Join the fun and excitement! 🎈⚡",
	"Welcome to Nexora! We’re pumped to have you! 🚀🎁",
	"Welcome to Nexora! Let’s create something awesome! 🛠️✨",
	"Welcome to Nexora! The community just got better! 💖🌟",
	"Welcome to Nexora! Dive in and explore! 🌊🎉",
}

func (b *Bot) pickWelcomeMessage() string {
	return welcomeMessages[b.intn(len(welcomeMessages))]
}
