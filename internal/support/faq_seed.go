package support

import "evmeri/internal/models"

func DefaultFAQs() []models.FAQ {
	faq := func(c models.FAQCategory, order uint, q, a string) models.FAQ {
		return models.FAQ{Category: c, Order: order, Question: q, Answer: a, IsActive: true}
	}
	return []models.FAQ{
		faq(models.FAQCharging, 1, "How do I start a charging session?",
			"Scan the QR code on the charging connector with the EVMeri app, select your payment method and follow the on-screen instructions."),
		faq(models.FAQCharging, 2, "How can I view my transaction history?",
			"Open your profile in the app and select \"Transaction History\" or \"Charging History\"."),
		faq(models.FAQCharging, 3, "What do I do if a charging station doesn't work?",
			"Report it from the app by tapping the station and selecting \"Report Issue\". You can also contact our support team."),

		faq(models.FAQPayments, 1, "What payment methods are accepted?",
			"Payments go through Chapa, which supports mobile money, bank transfers and card payments directly in the app."),
		faq(models.FAQPayments, 2, "How do I get a refund for a failed charging session?",
			"If your payment was processed but charging failed, the refund is processed automatically within 24-48 hours. Contact support if it does not arrive."),
		faq(models.FAQPayments, 3, "Can I save my payment information?",
			"Yes, payment information can be saved securely in the app for faster checkout."),

		faq(models.FAQStations, 1, "How do I find charging stations near me?",
			"Use the map view in the app to see nearby stations, or search for stations in a specific area."),
		faq(models.FAQStations, 2, "How do I know if a station is available?",
			"The app shows availability for each station. Green means available, yellow partially occupied and red fully occupied."),
		faq(models.FAQStations, 3, "Can I reserve a charging station?",
			"Reservations are not available yet. Stations operate on a first-come, first-served basis."),

		faq(models.FAQAccount, 1, "How do I update my profile information?",
			"Go to Settings > Profile to update your personal information, vehicle details and preferences."),
		faq(models.FAQAccount, 2, "How do I change my password?",
			"Go to Settings > Change Password, or use \"Forgot Password\" on the login screen."),
		faq(models.FAQAccount, 3, "Can I have multiple vehicle profiles?",
			"Yes, you can add several vehicles to your profile and switch between them."),
	}
}
