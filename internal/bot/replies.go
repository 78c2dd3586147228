package bot

// Fixed user-facing replies, in the bot's interaction language (Uzbek).
const (
	replyWelcome         = "Xush kelibsiz!"
	replyUnknownCommand  = "Nomalum buyruq!"
	replyGenericFailure  = "Xatolik yuz berdi. Iltimos, keyinroq urinib ko'ring."
	replySubscribePrompt = "Iltimos, quyidagi kanallarga obuna bo'ling:"
	replySubscribed      = "Rahmat! Endi botdan to'liq foydalanishingiz mumkin."
	buttonCheckAgain     = "A'zo bo'ldim ✅"

	replyAddChannelUsage     = "Iltimos, kanal nomini kiriting: /add_channel <channel_username>"
	replyChannelNotResolved  = "Iltimos, kanal nomini to'g'ri kiriting"
	replyChannelExists       = "Bu kanal allaqachon qo'shilgan."
	replyChannelAddFailed    = "Kanalni qo'shishda xatolik yuz berdi."
	replyDeleteChannelUsage  = "Iltimos, kanal nomini kiriting: /delete_channel <channel_name>"
	replyChannelDeleteFailed = "Kanalni o'chirishda xatolik yuz berdi."
	replyChannelListHeader   = "Qo'shilgan kanallar:"

	replyFilmArgsMissing  = "Kino url, code yoki nomi kiritilmagan!"
	replyFilmCodeNotNum   = "Kino kodi son bo'lishi kerak"
	replyFilmURLExists    = "Kino allaqachon qo'shilgan!"
	replyFilmCodeExists   = "Bu kodli kino mavjud!"
	replyFilmAddFailed    = "Kinoni qo'shishda xatolik yuz berdi."
	replyFilmNotFound     = "Kino topilmadi!"
	replyDeleteFilmUsage  = "Iltimos, kino kodini kiriting: /delete_film <code>"
	replyFilmDeleteFailed = "Kinoni o'chirishda xatolik yuz berdi."
)

// callbackCheckSubscription is the callback data of the re-check button
// under the subscription prompt.
const callbackCheckSubscription = "check_subscription"
