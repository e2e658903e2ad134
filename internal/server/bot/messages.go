package bot

// Reply-keyboard commands. Button labels carry the current value as a
// suffix, so matching is by prefix.
const (
	cmdSetNativeLanguage = "Set native language"
	cmdSetSearchLanguage = "Set search language"
)

const (
	welcomeText = "Hello, this is WannaTalkBot!\n\n" +
		"Bot for those who want to practice foreign languages. " +
		"It's a p2p service, so this means you should not only receive " +
		"help from other participants but also provide it.\n\n" +
		"P.S. This project is in its early stage, so there are not too " +
		"many users and not too many features yet."

	returningText = "Your native language is currently set to %s.\n\n" +
		"You could change it or just set which language you are interested in."

	nativePromptText = "Specify your native language. People who want to " +
		"practice it would be able to send you requests to talk.\n\n" +
		"Please enter the language name in English: 2 or 3 letters or full name.\n\n" +
		"For example: en, eng or English, ru, rus or Russian, etc."

	nativeSetText = "Your native language is set to %s."

	searchPromptText = "Specify the language which you want to practice " +
		"(in English, 2 or 3 letters or full name):"

	searchSetText = "We would try to find someone who is ready to help you, " +
		"just wait for it. When it happens you'll get each other's contacts.\n\n" +
		"Right now we have %d users who specified %s as their native language.\n\n" +
		"Also other people can send you requests to practice your native language."

	unknownLanguageText = "Sorry, failed to recognize the language. " +
		"Maybe you misspelled it?\n\nPlease try to enter it again:"

	somethingWrongText = "Something went wrong, please try again later."

	alreadyAnsweredText = "This request was already answered."
)
