package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/maynagashev/skillswap/models"
)

const (
	// sessionCookieName совпадает с именем cookie на сервере.
	sessionCookieName = "session"
	defaultTimeout    = 15 * time.Second
)

// ErrAuthorization сигнализирует об ошибке авторизации (401).
var ErrAuthorization = errors.New("ошибка авторизации")

// Error - ошибка, которую вернул сервер в теле {"error": "..."}.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("ошибка сервера (статус %d): %s", e.StatusCode, e.Message)
}

// Client определяет интерфейс для взаимодействия с API сервера SkillSwap.
type Client interface {
	// Signup регистрирует пользователя. Сессия сохраняется в клиенте.
	Signup(ctx context.Context, req models.SignupRequest) (*models.User, error)
	// Login выполняет вход. Сессия сохраняется в клиенте.
	Login(ctx context.Context, email, password string) (*models.User, error)
	// Logout завершает сессию на сервере.
	Logout(ctx context.Context) error
	// Me возвращает профиль текущего пользователя.
	Me(ctx context.Context) (*models.User, error)
	// UpdateProfile частично обновляет профиль.
	UpdateProfile(ctx context.Context, patch models.ProfilePatch) (*models.User, error)
	// Browse возвращает публичные профили, query может быть пустым.
	Browse(ctx context.Context, query string) ([]models.User, error)
	SendSwap(ctx context.Context, req models.SendSwapRequest) (*models.SwapRequest, error)
	ListSwaps(ctx context.Context) ([]models.SwapRequest, error)
	RespondSwap(ctx context.Context, requestID string, status models.SwapStatus) (*models.SwapRequest, error)
	Summary(ctx context.Context) (*models.SwapSummary, error)
	// SessionToken возвращает текущее значение cookie сессии (пусто, если сессии нет).
	SessionToken() string
	// SetSessionToken восстанавливает сессию, например, из файла.
	SetSessionToken(token string)
}

// httpClient реализует интерфейс Client для взаимодействия с сервером по HTTP.
type httpClient struct {
	baseURL    *url.URL     // Базовый URL сервера, например "http://localhost:5000"
	httpClient *http.Client // HTTP клиент с cookie jar
}

// NewHTTPClient создает новый экземпляр API клиента.
func NewHTTPClient(baseURL string) (Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("некорректный URL сервера %q: %w", baseURL, err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания cookie jar: %w", err)
	}
	return &httpClient{
		baseURL:    u,
		httpClient: &http.Client{Jar: jar, Timeout: defaultTimeout},
	}, nil
}

func (c *httpClient) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", nil, req, &user); err != nil {
		return nil, fmt.Errorf("ошибка регистрации: %w", err)
	}
	return &user, nil
}

func (c *httpClient) Login(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	body := models.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, body, &user); err != nil {
		return nil, fmt.Errorf("ошибка входа: %w", err)
	}
	return &user, nil
}

func (c *httpClient) Logout(ctx context.Context) error {
	var resp models.MessageResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, &resp); err != nil {
		return fmt.Errorf("ошибка выхода: %w", err)
	}
	return nil
}

func (c *httpClient) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &user); err != nil {
		return nil, fmt.Errorf("ошибка получения профиля: %w", err)
	}
	return &user, nil
}

func (c *httpClient) UpdateProfile(ctx context.Context, patch models.ProfilePatch) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodPut, "/api/auth/profile", nil, patch, &user); err != nil {
		return nil, fmt.Errorf("ошибка обновления профиля: %w", err)
	}
	return &user, nil
}

func (c *httpClient) Browse(ctx context.Context, query string) ([]models.User, error) {
	var params url.Values
	if query != "" {
		params = url.Values{"q": []string{query}}
	}
	var users []models.User
	if err := c.do(ctx, http.MethodGet, "/api/users/browse", params, nil, &users); err != nil {
		return nil, fmt.Errorf("ошибка получения каталога: %w", err)
	}
	return users, nil
}

func (c *httpClient) SendSwap(ctx context.Context, req models.SendSwapRequest) (*models.SwapRequest, error) {
	var swap models.SwapRequest
	if err := c.do(ctx, http.MethodPost, "/api/swaps/send", nil, req, &swap); err != nil {
		return nil, fmt.Errorf("ошибка отправки запроса на обмен: %w", err)
	}
	return &swap, nil
}

func (c *httpClient) ListSwaps(ctx context.Context) ([]models.SwapRequest, error) {
	var swaps []models.SwapRequest
	if err := c.do(ctx, http.MethodGet, "/api/swaps", nil, nil, &swaps); err != nil {
		return nil, fmt.Errorf("ошибка получения запросов на обмен: %w", err)
	}
	return swaps, nil
}

func (c *httpClient) RespondSwap(
	ctx context.Context,
	requestID string,
	status models.SwapStatus,
) (*models.SwapRequest, error) {
	var swap models.SwapRequest
	body := models.RespondSwapRequest{RequestID: requestID, Status: status}
	if err := c.do(ctx, http.MethodPut, "/api/swaps/respond", nil, body, &swap); err != nil {
		return nil, fmt.Errorf("ошибка ответа на запрос %s: %w", requestID, err)
	}
	return &swap, nil
}

func (c *httpClient) Summary(ctx context.Context) (*models.SwapSummary, error) {
	var summary models.SwapSummary
	if err := c.do(ctx, http.MethodGet, "/api/swaps/summary", nil, nil, &summary); err != nil {
		return nil, fmt.Errorf("ошибка получения сводки: %w", err)
	}
	return &summary, nil
}

func (c *httpClient) SessionToken() string {
	for _, cookie := range c.httpClient.Jar.Cookies(c.baseURL) {
		if cookie.Name == sessionCookieName {
			return cookie.Value
		}
	}
	return ""
}

func (c *httpClient) SetSessionToken(token string) {
	if token == "" {
		return
	}
	c.httpClient.Jar.SetCookies(c.baseURL, []*http.Cookie{{
		Name:  sessionCookieName,
		Value: token,
		Path:  "/",
	}})
}

// do выполняет JSON-запрос и декодирует успешный ответ в out.
// Ответ 401 превращается в ErrAuthorization, прочие ошибки в *Error.
func (c *httpClient) do(
	ctx context.Context,
	method, path string,
	query url.Values,
	body, out interface{},
) error {
	endpoint := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("ошибка кодирования тела запроса: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return fmt.Errorf("ошибка создания запроса: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка выполнения запроса %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("ошибка декодирования ответа: %w", err)
	}
	return nil
}

// decodeError читает тело ответа с ошибкой.
func decodeError(resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized {
		return ErrAuthorization
	}
	apiErr := &Error{StatusCode: resp.StatusCode}
	var body models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
		apiErr.Message = body.Error
	} else {
		apiErr.Message = http.StatusText(resp.StatusCode)
	}
	return apiErr
}
