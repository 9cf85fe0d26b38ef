package handlers

import (
	"blogapi/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// PostHandler handles HTTP requests for posts and their comments.
type PostHandler struct {
	postService    *services.PostService
	commentService *services.CommentService
	validate       *validator.Validate
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(postService *services.PostService, commentService *services.CommentService, validate *validator.Validate) *PostHandler {
	return &PostHandler{
		postService:    postService,
		commentService: commentService,
		validate:       validate,
	}
}

// RegisterRoutes registers the post routes with the Fiber app. Mutating
// routes go through authRequired; any authenticated user may act on any post.
func (h *PostHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	postRoutes := router.Group("/post")
	postRoutes.Post("/create-post/:userId", authRequired, h.HandleCreatePost)
	postRoutes.Get("/view-posts", h.HandleGetPosts)
	postRoutes.Get("/view-post/:id", h.HandleGetPostByID)
	postRoutes.Delete("/delete-post/:id", authRequired, h.HandleDeletePost)
	postRoutes.Put("/update-post/:id", authRequired, h.HandleUpdatePost)
	postRoutes.Get("/search", h.HandleSearchPosts)
	postRoutes.Get("/fetchComments/:postId", h.HandleFetchComments)
	postRoutes.Post("/addComments/:postId/:userId", authRequired, h.HandleAddComment)
}

// CreatePostRequest represents the request body for creating a post.
type CreatePostRequest struct {
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	Content string `json:"content"`
}

// UpdatePostRequest represents the request body for updating a post.
// Omitted fields are left unchanged.
type UpdatePostRequest struct {
	Title   *string `json:"title"`
	Excerpt *string `json:"excerpt"`
	Content *string `json:"content"`
}

// AddCommentRequest represents the request body for adding a comment.
type AddCommentRequest struct {
	Data string `json:"data"`
}

// HandleCreatePost creates a post authored by the :userId path parameter.
func (h *PostHandler) HandleCreatePost(c *fiber.Ctx) error {
	var req CreatePostRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	post, err := h.postService.Create(c.UserContext(), c.Params("userId"), services.PostInput{
		Title:   req.Title,
		Excerpt: req.Excerpt,
		Content: req.Content,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"post":    post,
	})
}

// HandleGetPosts retrieves all posts.
func (h *PostHandler) HandleGetPosts(c *fiber.Ctx) error {
	posts, err := h.postService.GetAll(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"posts":   posts,
	})
}

// HandleGetPostByID retrieves a single post by its ID.
func (h *PostHandler) HandleGetPostByID(c *fiber.Ctx) error {
	post, err := h.postService.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"post":    post,
	})
}

// HandleDeletePost deletes a post together with its comments.
func (h *PostHandler) HandleDeletePost(c *fiber.Ctx) error {
	if err := h.postService.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Post deleted successfully",
	})
}

// HandleUpdatePost updates the given fields of a post.
func (h *PostHandler) HandleUpdatePost(c *fiber.Ctx) error {
	var req UpdatePostRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	post, err := h.postService.Update(c.UserContext(), c.Params("id"), services.PostUpdate{
		Title:   req.Title,
		Excerpt: req.Excerpt,
		Content: req.Content,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"post":    post,
	})
}

// HandleSearchPosts returns the posts whose title contains ?title= as a
// bare JSON array.
func (h *PostHandler) HandleSearchPosts(c *fiber.Ctx) error {
	posts, err := h.postService.Search(c.UserContext(), c.Query("title"))
	if err != nil {
		return err
	}
	return c.JSON(posts)
}

// HandleFetchComments lists the comments of a post with author names.
func (h *PostHandler) HandleFetchComments(c *fiber.Ctx) error {
	comments, err := h.commentService.ListByPost(c.UserContext(), c.Params("postId"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"comments": comments,
	})
}

// HandleAddComment adds a comment by :userId to :postId.
func (h *PostHandler) HandleAddComment(c *fiber.Ctx) error {
	var req AddCommentRequest
	if err := parseBody(c, h.validate, &req); err != nil {
		return err
	}

	comment, err := h.commentService.Create(c.UserContext(), c.Params("postId"), c.Params("userId"), req.Data)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Comment added successfully",
		"comment": comment,
	})
}
