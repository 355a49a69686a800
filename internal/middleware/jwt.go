package middleware

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/gema-lab-grader/internal/utils"
)

const (
	studentIDLocal = "student_id"
	roleLocal      = "user_role"
)

// Claims is the token payload issued by the classroom portal. The student id
// is the numeric subject unless student_id is set explicitly.
type Claims struct {
	StudentID uint   `json:"student_id,omitempty"`
	Role      string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

var errNoStudent = errors.New("token does not identify a student")

func (c Claims) student() (uint, error) {
	if c.StudentID != 0 {
		return c.StudentID, nil
	}
	id, err := strconv.ParseUint(strings.TrimSpace(c.Subject), 10, 64)
	if err != nil || id == 0 {
		return 0, errNoStudent
	}
	return uint(id), nil
}

// JWTProtected validates HS256 bearer tokens and stores the student id and
// role in the request locals.
func JWTProtected(secret string) fiber.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	return func(c *fiber.Ctx) error {
		authorization := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
		if authorization == "" {
			return utils.SendError(c, fiber.StatusUnauthorized, "authorization header missing")
		}

		const bearer = "bearer "
		if len(authorization) <= len(bearer) || !strings.EqualFold(authorization[:len(bearer)], bearer) {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid authorization header")
		}

		var claims Claims
		token, err := parser.ParseWithClaims(strings.TrimSpace(authorization[len(bearer):]), &claims, func(*jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			return utils.SendError(c, fiber.StatusUnauthorized, "invalid token")
		}

		studentID, err := claims.student()
		if err != nil {
			return utils.SendError(c, fiber.StatusUnauthorized, err.Error())
		}

		c.Locals(studentIDLocal, studentID)
		c.Locals(roleLocal, strings.ToLower(strings.TrimSpace(claims.Role)))

		return c.Next()
	}
}

// StudentID returns the authenticated student, or zero.
func StudentID(c *fiber.Ctx) uint {
	id, _ := c.Locals(studentIDLocal).(uint)
	return id
}
