package validation

// Сообщения об ошибках валидации
const (
	msgNameChars      = "special characters are not allowed. only a-z, A-Z, 0-9 are allowed"
	msgNameLength     = "please enter name should have minimum 3 characters and maximum 50 character are allowed"
	msgEmail          = "please enter valid email"
	msgStrongPassword = "at least 8 characters, one lowercase, one uppercase, one number, and one symbol"
	msgPasswordLength = "password must be at most 72 bytes"
	msgContentLength  = "please enter minimum 3 characters and maximum allowed characters are 200"
	msgMediaRequired  = "image/video file is required"
	msgMediaType      = "only image or video files are allowed"
	msgMediaSize      = "file is too large"
	msgCommentLength  = "comment must be between 1 and 500 characters"
	msgBioLength      = "bio should be maximum 500 characters"
	msgPicType        = "only image files are allowed"
	msgPage           = "page should be a positive integer"
	msgLimit          = "limit should be between 1 and 100"
)

// MaxPasswordBytes - ограничение bcrypt на длину пароля
const MaxPasswordBytes = 72

// Поле загружаемого медиафайла поста и аватара
const (
	MediaField      = "image/video"
	ProfilePicField = "profilePic"
)

// Register - правила регистрации
func Register() Rules {
	return Rules{
		Body("name").Required("name field is missing").Trimmed().
			Check(AlphanumSpaces(), msgNameChars).
			Check(Length(3, 50), msgNameLength),
		Body("email").Required("email field is missing").
			Check(Email(), msgEmail),
		Body("password").Required("password field is missing").
			Check(StrongPassword(), msgStrongPassword).
			Check(MaxBytes(MaxPasswordBytes), msgPasswordLength),
	}
}

// Login - правила входа; сложность пароля здесь не проверяется
func Login() Rules {
	return Rules{
		Body("email").Required("email field is missing").
			Check(Email(), msgEmail),
		Body("password").Required("password field is missing"),
	}
}

// CreatePost - правила создания поста
func CreatePost(maxBytes int64) Rules {
	return Rules{
		Body("content").Required("missing content field").Trimmed().
			Check(Length(3, 200), msgContentLength),
		File(MediaField).Required(msgMediaRequired).
			Check(MediaType("image/", "video/"), msgMediaType).
			Check(MaxFileSize(maxBytes), msgMediaSize),
	}
}

// UpdatePost - правила изменения поста
func UpdatePost(maxBytes int64) Rules {
	return Rules{
		Param("id").Required("Invalid post ID").Check(ObjectID(), "Invalid post ID"),
		Body("content").Opt().Trimmed().
			Check(Length(3, 200), msgContentLength),
		File(MediaField).Opt().
			Check(MediaType("image/", "video/"), msgMediaType).
			Check(MaxFileSize(maxBytes), msgMediaSize),
	}
}

// AddComment - правила добавления комментария
func AddComment() Rules {
	return Rules{
		Body("text").Required("text field is missing").Trimmed().
			Check(Length(1, 500), msgCommentLength),
		Param("id").Required("Invalid post ID").Check(ObjectID(), "Invalid post ID"),
	}
}

// PostID - правила для маршрутов с идентификатором поста
func PostID() Rules {
	return Rules{Param("id").Required("Invalid post ID").Check(ObjectID(), "Invalid post ID")}
}

// CommentID - правила для маршрутов с идентификатором комментария
func CommentID() Rules {
	return Rules{Param("id").Required("Invalid comment ID").Check(ObjectID(), "Invalid comment ID")}
}

// UserID - правила для маршрутов с идентификатором пользователя
func UserID() Rules {
	return Rules{Param("id").Required("Invalid user ID").Check(ObjectID(), "Invalid user ID")}
}

// UpdateProfile - правила изменения профиля
func UpdateProfile(maxBytes int64) Rules {
	return Rules{
		Body("name").Opt().Trimmed().
			Check(AlphanumSpaces(), "special characters are not allowed in name").
			Check(Length(3, 50), "name should have minimum 3 characters and maximum 50 characters"),
		Body("bio").Opt().Trimmed().
			Check(Length(0, 500), msgBioLength),
		File(ProfilePicField).Opt().
			Check(MediaType("image/"), msgPicType).
			Check(MaxFileSize(maxBytes), msgMediaSize),
	}
}

// Pagination - правила параметров страницы
func Pagination() Rules {
	return Rules{
		Query("page").Opt().Check(IntRange(1, 0), msgPage),
		Query("limit").Opt().Check(IntRange(1, 100), msgLimit),
	}
}

// Merge объединяет наборы правил по порядку
func Merge(sets ...Rules) Rules {
	var out Rules
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}
