package browser

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/marmos91/dittocmis/pkg/cmis"
	"github.com/marmos91/dittocmis/pkg/repository"
	"github.com/marmos91/dittocmis/pkg/store/resource"
)

func (a *BrowserAdapter) routes() {
	e := a.echo

	e.GET("/", a.repositoryInfos)

	r := e.Group("/:repo")
	r.GET("", a.repositoryInfo)
	r.GET("/types", a.typeChildren)
	r.GET("/types/:typeId", a.typeDefinition)
	r.GET("/types/:typeId/descendants", a.typeDescendants)
	r.GET("/path", a.objectByPath)
	r.POST("/query", a.query)

	o := r.Group("/objects/:id")
	o.GET("", a.object)
	o.GET("/properties", a.properties)
	o.GET("/children", a.children)
	o.GET("/descendants", a.descendants)
	o.GET("/tree", a.folderTree)
	o.GET("/parent", a.folderParent)
	o.GET("/parents", a.objectParents)
	o.GET("/actions", a.allowableActions)
	o.GET("/acl", a.acl)
	o.GET("/relationships", a.relationships)
	o.GET("/content", a.content)
	o.HEAD("/content", a.content)

	o.PUT("/content", a.setContent)
	o.DELETE("/content", a.deleteContent)
	o.PATCH("", a.updateProperties)
	o.DELETE("", a.deleteObject)
}

// call resolves the repository named in the path and the caller's
// credentials.
func (a *BrowserAdapter) call(c echo.Context) (*repository.Repository, repository.CallContext, error) {
	id := c.Param("repo")
	repo, err := a.registry.GetRepository(id)
	if err != nil {
		return nil, repository.CallContext{}, err
	}

	cc := repository.CallContext{RepositoryID: id}
	if username, password, ok := c.Request().BasicAuth(); ok {
		cc.Username = username
		cc.Password = password
	}
	return repo, cc, nil
}

// objectOptions reads the query parameters shared by every object route.
func objectOptions(c echo.Context) (repository.ObjectOptions, error) {
	opts := repository.ObjectOptions{Filter: c.QueryParam("filter")}
	err := echo.QueryParamsBinder(c).
		Bool("includeAllowableActions", &opts.IncludeAllowableActions).
		Bool("includeACL", &opts.IncludeACL).
		Bool("onlyBasicPermissions", &opts.OnlyBasicPermissions).
		BindError()
	return opts, invalidParameter(err)
}

// invalidParameter turns a binder failure into a protocol error.
func invalidParameter(err error) error {
	if err == nil {
		return nil
	}
	if be, ok := err.(*echo.BindingError); ok {
		return cmis.InvalidArgument("invalid value for %s: %v", be.Field, be.Values)
	}
	return cmis.InvalidArgument("%v", err)
}

func (a *BrowserAdapter) repositoryInfos(c echo.Context) error {
	return c.JSON(http.StatusOK, a.registry.RepositoryInfos())
}

func (a *BrowserAdapter) repositoryInfo(c echo.Context) error {
	repo, cc, err := a.call(c)
	if err != nil {
		return err
	}
	info, err := repo.GetRepositoryInfo(c.Request().Context(), cc)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, info)
}

func (a *BrowserAdapter) typeChildren(c echo.Context) error {
	repo, cc, err := a.call(c)
	if err != nil {
		return err
	}

	var includeDefs bool
	var maxItems, skipCount int64
	err = echo.QueryParamsBinder(c).
		Bool("includePropertyDefinitions", &includeDefs).
		Int64("maxItems", &maxItems).
		Int64("skipCount", &skipCount).
		BindError()
	if err != nil {
		return invalidParameter(err)
	}

	list, err := repo.GetTypeChildren(c.Request().Context(), cc, c.QueryParam("typeId"), includeDefs, maxItems, skipCount)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (a *BrowserAdapter) typeDefinition(c echo.Context) error {
	repo, cc, err := a.call(c)
	if err != nil {
		return err
	}
	def, err := repo.GetTypeDefinition(c.Request().Context(), cc, c.Param("typeId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, def)
}

func (a *BrowserAdapter) typeDescendants(c echo.Context) error {
	repo, cc, err := a.call(c)
	if err != nil {
		return err
	}

	depth := int64(-1)
	var includeDefs bool
	err = echo.QueryParamsBinder(c).
		Int64("depth", &depth).
		Bool("includePropertyDefinitions", &includeDefs).
		BindError()
	if err != nil {
		return invalidParameter(err)
	}

	tree, err := repo.GetTypeDescendants(c.Request().Context(), cc, c.Param("typeId"), depth, includeDefs)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tree)
}

func (a *BrowserAdapter) object(c echo.Context) error {
	repo, cc, err := a.call(c)
	if err != nil {
		return err
	}
	opts, err := objectOptions(c)
	if err != nil {
		return err
	}
	obj, err := repo.GetObject(c.Request().Context(), cc, c.Param("id"), opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, obj)
}

func (a *BrowserAdapter) objectByPath(c echo.Context) error {
	repo, cc, err := a.call(c)
	if err != nil {
		return err
	}
	opts, err := objectOptions(c)
	if err != nil {
		return err
	}
	obj, err := repo.GetObjectByPath(c.Request().Context(), cc, c.QueryParam("path"), opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, obj)
}

func (a *BrowserAdapter) properties(c echo.Context) error {
	repo, cc, err := a.call(c)
	if err != nil {
		return err
	}
	props, err := repo.GetProperties(c.Request().Context(), cc, c.Param("id"), c.QueryParam("filter"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, props)
}

func (a *BrowserAdapter) children(c echo.Context) error {
	repo, cc, err := a.call(c)
	if err != nil {
		return err
	}

	var opts repository.ChildrenOptions
	if opts.ObjectOptions, err = objectOptions(c); err != nil {
		return err
	}
	err = echo.QueryParamsBinder(c).
		Bool("includePathSegment", &opts.IncludePathSegment).
		Int64("maxItems", &opts.MaxItems).
		Int64("skipCount", &opts.SkipCount).
		BindError()
	if err != nil {
		return invalidParameter(err)
	}

	list, err := repo.GetChildren(c.Request().Context(), cc, c.Param("id"), opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// treeParams reads depth (default unbounded) and the descendants options.
func treeParams(c echo.Context) (int64, repository.DescendantsOptions, error) {
	var opts repository.DescendantsOptions
	var err error
	if opts.ObjectOptions, err = objectOptions(c); err != nil {
		return 0, opts, err
	}

	depth := int64(-1)
	err = echo.QueryParamsBinder(c).
		Int64("depth", &depth).
		Bool("includePathSegment", &opts.IncludePathSegment).
		BindError()
	return depth, opts, invalidParameter(err)
}

func (a *BrowserAdapter) descendants(c echo.Context) error {
	repo, cc, err := a.call(c)
	if err != nil {
		return err
	}
	depth, opts, err := treeParams(c)
	if err != nil {
		return err
	}
	tree, err := repo.GetDescendants(c.Request().Context(), cc, c.Param("id"), depth, opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tree)
}

func (a *BrowserAdapter) folderTree(c echo.Context) error {
	repo, cc, err := a.call(c)
	if err != nil {
		return err
	}
	depth, opts, err := treeParams(c)
	if err != nil {
		return err
	}
	tree, err := repo.GetFolderTree(c.Request().Context(), cc, c.Param("id"), depth, opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tree)
}

func (a *BrowserAdapter) folderParent(c echo.Context) error {
	repo, cc, err := a.call(c)
	if err != nil {
		return err
	}
	parent, err := repo.GetFolderParent(c.Request().Context(), cc, c.Param("id"), c.QueryParam("filter"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, parent)
}

func (a *BrowserAdapter) objectParents(c echo.Context) error {
	repo, cc, err := a.call(c)
	if err != nil {
		return err
	}

	var opts repository.ParentsOptions
	if opts.ObjectOptions, err = objectOptions(c); err != nil {
		return err
	}
	err = echo.QueryParamsBinder(c).
		Bool("includeRelativePathSegment", &opts.IncludeRelativePathSegment).
		BindError()
	if err != nil {
		return invalidParameter(err)
	}

	parents, err := repo.GetObjectParents(c.Request().Context(), cc, c.Param("id"), opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, parents)
}

func (a *BrowserAdapter) allowableActions(c echo.Context) error {
	repo, cc, err := a.call(c)
	if err != nil {
		return err
	}
	actions, err := repo.GetAllowableActions(c.Request().Context(), cc, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, actions)
}

func (a *BrowserAdapter) acl(c echo.Context) error {
	repo, cc, err := a.call(c)
	if err != nil {
		return err
	}

	var onlyBasic bool
	if err := echo.QueryParamsBinder(c).Bool("onlyBasicPermissions", &onlyBasic).BindError(); err != nil {
		return invalidParameter(err)
	}

	acl, err := repo.GetACL(c.Request().Context(), cc, c.Param("id"), onlyBasic)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, acl)
}

func (a *BrowserAdapter) relationships(c echo.Context) error {
	repo, cc, err := a.call(c)
	if err != nil {
		return err
	}

	opts := repository.RelationshipsOptions{
		TypeID: c.QueryParam("typeId"),
		Filter: c.QueryParam("filter"),
	}
	direction, ok := resource.ParseDirection(c.QueryParam("relationshipDirection"))
	if !ok {
		return cmis.InvalidArgument("invalid relationshipDirection %q", c.QueryParam("relationshipDirection"))
	}
	opts.Direction = direction

	err = echo.QueryParamsBinder(c).
		Bool("includeSubRelationshipTypes", &opts.IncludeSubRelationshipTypes).
		Bool("includeAllowableActions", &opts.IncludeAllowableActions).
		Int64("maxItems", &opts.MaxItems).
		Int64("skipCount", &opts.SkipCount).
		BindError()
	if err != nil {
		return invalidParameter(err)
	}

	list, err := repo.GetObjectRelationships(c.Request().Context(), cc, c.Param("id"), opts)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (a *BrowserAdapter) content(c echo.Context) error {
	repo, cc, err := a.call(c)
	if err != nil {
		return err
	}
	stream, err := repo.GetContentStream(c.Request().Context(), cc, c.Param("id"))
	if err != nil {
		return err
	}
	defer stream.Stream.Close()

	h := c.Response().Header()
	h.Set(echo.HeaderContentLength, strconv.FormatInt(stream.Length, 10))
	h.Set(echo.HeaderContentDisposition, mimeDisposition(stream.FileName))
	if c.Request().Method == http.MethodHead {
		h.Set(echo.HeaderContentType, stream.MimeType)
		return c.NoContent(http.StatusOK)
	}
	return c.Stream(http.StatusOK, stream.MimeType, io.LimitReader(stream.Stream, stream.Length))
}

func (a *BrowserAdapter) setContent(c echo.Context) error {
	repo, cc, err := a.call(c)
	if err != nil {
		return err
	}
	return repo.SetContentStream(c.Request().Context(), cc, c.Param("id"), c.Request().Body)
}

func (a *BrowserAdapter) deleteContent(c echo.Context) error {
	repo, cc, err := a.call(c)
	if err != nil {
		return err
	}
	return repo.DeleteContentStream(c.Request().Context(), cc, c.Param("id"))
}

func (a *BrowserAdapter) updateProperties(c echo.Context) error {
	repo, cc, err := a.call(c)
	if err != nil {
		return err
	}
	var props map[string]any
	if err := c.Bind(&props); err != nil {
		return cmis.InvalidArgument("invalid properties: %v", err)
	}
	return repo.UpdateProperties(c.Request().Context(), cc, c.Param("id"), props)
}

func (a *BrowserAdapter) deleteObject(c echo.Context) error {
	repo, cc, err := a.call(c)
	if err != nil {
		return err
	}
	return repo.DeleteObject(c.Request().Context(), cc, c.Param("id"))
}

func (a *BrowserAdapter) query(c echo.Context) error {
	repo, cc, err := a.call(c)
	if err != nil {
		return err
	}
	_, err = repo.Query(c.Request().Context(), cc, c.FormValue("statement"))
	return err
}
