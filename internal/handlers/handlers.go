package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"shopfront/api/internal/config"
	"shopfront/api/internal/middleware"
	"shopfront/api/internal/models"
	"shopfront/api/internal/oauth"
	"shopfront/api/internal/repository"
	"shopfront/api/internal/security"
	"shopfront/api/internal/service"
	"shopfront/api/internal/storage"
)

type HandlerSet struct {
	log          zerolog.Logger
	cfg          *config.AppConfig
	signer       *security.TokenSigner
	cipher       *security.TokenCipher
	authService  *service.AuthService
	mediaService *service.MediaService
	google       oauth.Provider
	db           *pgxpool.Pool
	cache        *redis.Client
	accounts     *repository.AccountRepository
	stores       repository.StoreStore
	products     repository.ProductStore
	orders       *repository.OrderRepository
	contacts     *repository.ContactRepository
	addresses    *repository.AddressRepository
}

func NewHandlerSet(log zerolog.Logger, db *pgxpool.Pool, cache *redis.Client, store *storage.ObjectStore, cfg *config.AppConfig) (HandlerSet, error) {
	accountRepo := repository.NewAccountRepository(db)
	linkRepo := repository.NewOAuthLinkRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	contactRepo := repository.NewContactRepository(db)
	addressRepo := repository.NewAddressRepository(db)
	mediaRepo := repository.NewMediaRepository(db)

	signer := security.NewTokenSigner(
		cfg.Security.JWTAccessSecret,
		cfg.Security.JWTRefreshSecret,
		cfg.Security.JWTAccessTTL,
		cfg.Security.JWTRefreshTTL,
	)
	cipher, err := security.NewTokenCipher(cfg.Security.RefreshCipherKey)
	if err != nil {
		return HandlerSet{}, err
	}

	auth := service.NewAuthService(accountRepo, linkRepo, signer, cipher, log)
	media := service.NewMediaService(mediaRepo, store, cfg, log)

	return HandlerSet{
		log:          log,
		cfg:          cfg,
		signer:       signer,
		cipher:       cipher,
		authService:  auth,
		mediaService: media,
		google:       oauth.NewGoogleProvider(cfg.OAuth.Google),
		db:           db,
		cache:        cache,
		accounts:     accountRepo,
		stores:       storeRepo,
		products:     productRepo,
		orders:       orderRepo,
		contacts:     contactRepo,
		addresses:    addressRepo,
	}, nil
}

func (h HandlerSet) Routes(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")

	throttle := middleware.RateLimit(h.cfg.RateLimit, h.cache, h.log)
	authed := middleware.Auth(h.signer, h.accounts)

	auth := v1.Group("/auth")
	{
		auth.POST("/register", throttle, h.Register)
		auth.POST("/login", throttle, h.Login)
		auth.GET("/google/login", h.GoogleLogin)
		auth.GET("/google/redirect", h.GoogleRedirect)
		auth.POST("/new-token", throttle, h.NewToken)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", authed, h.Me)
	}

	stores := v1.Group("/stores", authed)
	{
		stores.POST("", h.CreateStore)
		stores.GET("", h.ListStores)
		stores.GET("/:storeId", h.GetStore)
		stores.PUT("/:storeId", h.UpdateStore)
		stores.DELETE("/:storeId", h.DeleteStore)

		stores.POST("/:storeId/products", h.CreateProduct)
		stores.GET("/:storeId/products", h.ListProducts)
		stores.GET("/:storeId/products/:productId", h.GetProduct)
		stores.PUT("/:storeId/products/:productId", h.UpdateProduct)
		stores.DELETE("/:storeId/products/:productId", h.DeleteProduct)

		stores.POST("/:storeId/orders", h.CreateOrder)
		stores.GET("/:storeId/orders", h.ListOrders)
		stores.GET("/:storeId/orders/:orderId", h.GetOrder)
		stores.PATCH("/:storeId/orders/:orderId/status", h.UpdateOrderStatus)
	}

	contacts := v1.Group("/contacts", authed)
	{
		contacts.POST("", h.CreateContact)
		contacts.GET("", h.ListContacts)
		contacts.PUT("/:contactId", h.UpdateContact)
		contacts.DELETE("/:contactId", h.DeleteContact)
	}

	addresses := v1.Group("/addresses", authed)
	{
		addresses.POST("", h.CreateAddress)
		addresses.GET("", h.ListAddresses)
		addresses.PUT("/:addressId", h.UpdateAddress)
		addresses.PATCH("/:addressId/default", h.SetDefaultAddress)
		addresses.DELETE("/:addressId", h.DeleteAddress)
	}

	media := v1.Group("/media", authed)
	media.POST("/upload", h.UploadMedia)

	admin := v1.Group("/admin", authed, middleware.RequireRoles(models.AccountRoleAdmin))
	{
		admin.GET("/accounts", h.AdminListAccounts)
		admin.GET("/orders", h.AdminListOrders)
	}
}

// currentAccount pulls the account the auth middleware loaded.
func currentAccount(c *gin.Context) (models.Account, bool) {
	accountVal, exists := c.Get("current_account")
	if !exists {
		return models.Account{}, false
	}
	account, ok := accountVal.(models.Account)
	return account, ok
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
	// maxPage bounds the offset so an absurd page number cannot overflow
	// into a negative offset.
	maxPage = 1_000_000
)

func pageParams(c *gin.Context) (limit, offset int) {
	limit = defaultPageSize
	offset = 0
	if perPage := c.Query("perPage"); perPage != "" {
		if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= maxPageSize {
			limit = v
		}
	}
	if page := c.Query("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 1 && v <= maxPage {
			offset = (v - 1) * limit
		}
	}
	return limit, offset
}
